// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

// Package agent implements conversational data analysis: a question
// in natural language is turned into DuckDB SQL, executed, and the
// result narrated back. With no language model configured the agent
// degrades to keyword rules and a canned narration, so the endpoint
// always answers.
package agent

import (
	"context"
	"fmt"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/logging"
	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

// Querier executes raw read-only SQL.
type Querier interface {
	Query(ctx context.Context, query string) (*models.QueryResult, error)
}

// Agent answers natural-language questions about the order store.
type Agent struct {
	db       Querier
	provider Provider
}

// New creates an Agent. provider may be nil, in which case every
// question is answered through the rule fallback.
func New(db Querier, provider Provider) *Agent {
	return &Agent{db: db, provider: provider}
}

// HasProvider reports whether a language model is wired in.
func (a *Agent) HasProvider() bool {
	return a.provider != nil
}

// Chat runs the full pipeline: SQL generation, execution, narration.
// Failures degrade stage by stage rather than aborting: a model error
// falls back to rules, a narration error still returns the data, and
// only a failed query surfaces as an error in the response.
func (a *Agent) Chat(ctx context.Context, question string) *models.ChatResponse {
	resp := &models.ChatResponse{Question: question}

	if answer := quickAnswer(question); answer != "" {
		resp.Insight = answer
		return resp
	}

	resp.SQL = a.generateSQL(ctx, question)

	result, err := a.db.Query(ctx, resp.SQL)
	if err != nil {
		logging.Warn().Err(err).Str("sql", resp.SQL).Msg("chat query failed")
		resp.Error = fmt.Sprintf("SQL执行错误: %v", err)
		return resp
	}
	resp.Data = result.Rows

	resp.Insight = a.narrate(ctx, question, result)
	return resp
}

// generateSQL asks the model for a query, falling back to keyword
// rules when no model is configured or the call fails.
func (a *Agent) generateSQL(ctx context.Context, question string) string {
	if a.provider != nil {
		raw, err := a.provider.Complete(ctx, sqlPrompt(question))
		if err == nil {
			if sql := sanitizeSQL(raw); sql != "" {
				return sql
			}
		} else {
			logging.Warn().Err(err).Str("provider", a.provider.Name()).Msg("sql generation failed, using rules")
		}
	}

	sql, rule := ruleSQL(question)
	logging.Debug().Str("rule", rule).Msg("resolved question via fallback rule")
	return sql
}

// narrate produces the insight text for a query result.
func (a *Agent) narrate(ctx context.Context, question string, result *models.QueryResult) string {
	if a.provider == nil {
		return fallbackInsight
	}

	insight, err := a.provider.Complete(ctx, insightPrompt(question, result))
	if err != nil {
		logging.Warn().Err(err).Str("provider", a.provider.Name()).Msg("insight generation failed")
		return fallbackInsight
	}
	return insight
}
