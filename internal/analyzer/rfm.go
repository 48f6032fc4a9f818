// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package analyzer

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
	"gonum.org/v1/gonum/stat"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/database"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

// rfmSeed fixes the centroid initialization so segmentation is stable
// across runs. kmeans draws its initial centroids from the global
// math/rand source.
const rfmSeed = 42

// kmeansMu serializes seed-then-partition so concurrent segmentations
// cannot interleave draws from the shared source and diverge.
var kmeansMu sync.Mutex

// Value-score weights used to rank cluster centroids for labeling:
// monetary dominates, then frequency, with low recency rewarded.
const (
	monetaryWeight  = 0.5
	frequencyWeight = 0.3
	recencyWeight   = 0.2
)

// rfmObservation carries the user id through clustering.
type rfmObservation struct {
	userID string
	coords clusters.Coordinates
}

func (o rfmObservation) Coordinates() clusters.Coordinates { return o.coords }

func (o rfmObservation) Distance(point clusters.Coordinates) float64 {
	return o.coords.Distance(point)
}

// RFM segments users by recency/frequency/monetary using k-means over
// standardized features. Cluster count comes from configuration unless
// overridden with a positive k. Labels are assigned to clusters by
// descending value score; every user receives exactly one cluster.
func (a *Analyzer) RFM(ctx context.Context, k int) (*models.RFMResult, error) {
	if k <= 0 {
		k = a.rfm.Clusters
	}

	features, err := a.db.RFMFeatures(ctx)
	if err != nil {
		return nil, err
	}
	return clusterRFM(features, k, a.rfm.Labels, a.rfm.Strategies)
}

func clusterRFM(features []database.RFMFeature, k int, labels []string, strategies map[string]string) (*models.RFMResult, error) {
	if len(features) == 0 {
		return &models.RFMResult{Records: []models.RFMRecord{}, Summaries: []models.RFMClusterSummary{}, Clusters: 0}, nil
	}
	// Fewer users than clusters: every user becomes its own cluster.
	if k > len(features) {
		k = len(features)
	}
	if k < 2 {
		return singleCluster(features, labels, strategies), nil
	}

	scaled := standardize(features)

	observations := make(clusters.Observations, len(features))
	for i, f := range features {
		observations[i] = rfmObservation{userID: f.UserID, coords: scaled[i]}
	}

	kmeansMu.Lock()
	//nolint:staticcheck // kmeans initializes centroids from the global source; seeding it is the only reproducibility hook
	rand.Seed(rfmSeed)

	km := kmeans.New()
	partition, err := km.Partition(observations, k)
	kmeansMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("k-means partition failed: %w", err)
	}

	byUser := make(map[string]database.RFMFeature, len(features))
	for _, f := range features {
		byUser[f.UserID] = f
	}

	// Collect members per cluster and compute raw centroid means.
	type clusterInfo struct {
		id      int
		members []database.RFMFeature
		avgR    float64
		avgF    float64
		avgM    float64
	}
	infos := make([]clusterInfo, len(partition))
	for i, c := range partition {
		info := clusterInfo{id: i}
		for _, obs := range c.Observations {
			ro, ok := obs.(rfmObservation)
			if !ok {
				continue
			}
			f := byUser[ro.userID]
			info.members = append(info.members, f)
			info.avgR += float64(f.Recency)
			info.avgF += float64(f.Frequency)
			info.avgM += f.Monetary
		}
		if n := float64(len(info.members)); n > 0 {
			info.avgR /= n
			info.avgF /= n
			info.avgM /= n
		}
		infos[i] = info
	}

	// Rank clusters by value score and map labels in that order.
	var maxR, maxF, maxM float64
	for _, info := range infos {
		maxR = max(maxR, info.avgR)
		maxF = max(maxF, info.avgF)
		maxM = max(maxM, info.avgM)
	}
	score := func(info clusterInfo) float64 {
		s := 0.0
		if maxM > 0 {
			s += monetaryWeight * info.avgM / maxM
		}
		if maxF > 0 {
			s += frequencyWeight * info.avgF / maxF
		}
		if maxR > 0 {
			s += recencyWeight * (1 - info.avgR/maxR)
		}
		return s
	}
	ranked := make([]int, len(infos))
	for i := range ranked {
		ranked[i] = i
	}
	sort.Slice(ranked, func(i, j int) bool {
		return score(infos[ranked[i]]) > score(infos[ranked[j]])
	})

	labelOf := make(map[int]string, len(ranked))
	for rank, clusterID := range ranked {
		if rank < len(labels) {
			labelOf[clusterID] = labels[rank]
		} else {
			labelOf[clusterID] = fmt.Sprintf("用户群%d", clusterID)
		}
	}

	result := &models.RFMResult{Clusters: k}
	total := float64(len(features))
	for _, info := range infos {
		label := labelOf[info.id]
		for _, f := range info.members {
			result.Records = append(result.Records, models.RFMRecord{
				UserID:    f.UserID,
				Recency:   f.Recency,
				Frequency: f.Frequency,
				Monetary:  round2(f.Monetary),
				Cluster:   info.id,
				Label:     label,
				Strategy:  strategies[label],
			})
		}
		result.Summaries = append(result.Summaries, models.RFMClusterSummary{
			Label:        label,
			Users:        len(info.members),
			AvgRecency:   round2(info.avgR),
			AvgFrequency: round2(info.avgF),
			AvgMonetary:  round2(info.avgM),
			SharePct:     round2(float64(len(info.members)) / total * 100),
			Strategy:     strategies[label],
		})
	}

	// Highest-value clusters first for presentation.
	sort.Slice(result.Summaries, func(i, j int) bool {
		return result.Summaries[i].AvgMonetary > result.Summaries[j].AvgMonetary
	})
	return result, nil
}

// singleCluster handles the degenerate one-user (or k=1) case without
// invoking k-means.
func singleCluster(features []database.RFMFeature, labels []string, strategies map[string]string) *models.RFMResult {
	label := "用户群0"
	if len(labels) > 0 {
		label = labels[0]
	}

	result := &models.RFMResult{Clusters: 1}
	var sumR, sumF, sumM float64
	for _, f := range features {
		result.Records = append(result.Records, models.RFMRecord{
			UserID:    f.UserID,
			Recency:   f.Recency,
			Frequency: f.Frequency,
			Monetary:  round2(f.Monetary),
			Cluster:   0,
			Label:     label,
			Strategy:  strategies[label],
		})
		sumR += float64(f.Recency)
		sumF += float64(f.Frequency)
		sumM += f.Monetary
	}
	n := float64(len(features))
	result.Summaries = []models.RFMClusterSummary{{
		Label:        label,
		Users:        len(features),
		AvgRecency:   round2(sumR / n),
		AvgFrequency: round2(sumF / n),
		AvgMonetary:  round2(sumM / n),
		SharePct:     100,
		Strategy:     strategies[label],
	}}
	return result
}

// standardize scales each feature dimension to zero mean and unit
// variance. A dimension with zero spread maps to all zeros.
func standardize(features []database.RFMFeature) []clusters.Coordinates {
	n := len(features)
	rs := make([]float64, n)
	fs := make([]float64, n)
	ms := make([]float64, n)
	for i, f := range features {
		rs[i] = float64(f.Recency)
		fs[i] = float64(f.Frequency)
		ms[i] = f.Monetary
	}

	scale := func(xs []float64) {
		mean := stat.Mean(xs, nil)
		sd := stat.StdDev(xs, nil)
		if sd == 0 || n < 2 {
			for i := range xs {
				xs[i] = 0
			}
			return
		}
		for i := range xs {
			xs[i] = (xs[i] - mean) / sd
		}
	}
	scale(rs)
	scale(fs)
	scale(ms)

	coords := make([]clusters.Coordinates, n)
	for i := range coords {
		coords[i] = clusters.Coordinates{rs[i], fs[i], ms[i]}
	}
	return coords
}
