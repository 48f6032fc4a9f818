// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

type stubQuerier struct {
	lastSQL string
	result  *models.QueryResult
	err     error
}

func (s *stubQuerier) Query(_ context.Context, query string) (*models.QueryResult, error) {
	s.lastSQL = query
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type stubProvider struct {
	responses map[string]string
	err       error
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, prompt string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	for marker, response := range s.responses {
		if strings.Contains(prompt, marker) {
			return response, nil
		}
	}
	return "", errors.New("no canned response")
}

func sampleResult() *models.QueryResult {
	return &models.QueryResult{
		Columns: []string{"user_id", "total_spend"},
		Rows: []map[string]interface{}{
			{"user_id": "U00001", "total_spend": 9800.5},
			{"user_id": "U00002", "total_spend": 7200.0},
		},
	}
}

func TestRuleSQL(t *testing.T) {
	tests := []struct {
		question string
		wantRule string
		wantFrag string
	}{
		{"找出消费最高的用户", "top_spenders", "SUM(amount) AS total_spend"},
		{"哪个城市的退货率最高", "refund_by_city", "refund_rate"},
		{"各品类的销售额是多少", "category_gmv", "GROUP BY category"},
		{"分析一下各个渠道", "channel_analysis", "GROUP BY channel"},
		{"最近的销售趋势怎么样", "daily_trend", "DATE_TRUNC('day', order_date)"},
		{"销量最好的商品有哪些", "top_products", "total_qty"},
		{"随便看看", "default", "SELECT * FROM orders LIMIT 10"},
	}

	for _, tc := range tests {
		t.Run(tc.wantRule, func(t *testing.T) {
			sql, rule := ruleSQL(tc.question)
			if rule != tc.wantRule {
				t.Errorf("question %q matched rule %s, want %s", tc.question, rule, tc.wantRule)
			}
			if !strings.Contains(sql, tc.wantFrag) {
				t.Errorf("rule %s SQL missing %q:\n%s", rule, tc.wantFrag, sql)
			}
		})
	}
}

func TestSanitizeSQL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```sql\nSELECT 1\n```", "SELECT 1"},
		{"  SELECT 2  ", "SELECT 2"},
		{"```\nSELECT 3\n```", "SELECT 3"},
		{"SELECT 4", "SELECT 4"},
	}
	for _, tc := range tests {
		if got := sanitizeSQL(tc.in); got != tc.want {
			t.Errorf("sanitizeSQL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestChat_NoProviderUsesRules(t *testing.T) {
	q := &stubQuerier{result: sampleResult()}
	a := New(q, nil)

	resp := a.Chat(context.Background(), "找出消费最高的用户")

	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	if !strings.Contains(resp.SQL, "total_spend") {
		t.Errorf("SQL not resolved via rules: %s", resp.SQL)
	}
	if q.lastSQL != resp.SQL {
		t.Errorf("executed %q, response says %q", q.lastSQL, resp.SQL)
	}
	if len(resp.Data) != 2 {
		t.Errorf("got %d data rows, want 2", len(resp.Data))
	}
	if resp.Insight != fallbackInsight {
		t.Errorf("expected canned insight, got %q", resp.Insight)
	}
}

func TestChat_ProviderGeneratesSQLAndInsight(t *testing.T) {
	q := &stubQuerier{result: sampleResult()}
	p := &stubProvider{responses: map[string]string{
		"SQL查询:": "```sql\nSELECT user_id FROM orders LIMIT 5\n```",
		"查询结果:":  "消费最高的用户是U00001，累计消费9800.5元。",
	}}
	a := New(q, p)

	resp := a.Chat(context.Background(), "找出消费最高的用户")

	if resp.SQL != "SELECT user_id FROM orders LIMIT 5" {
		t.Errorf("SQL = %q, fences not stripped", resp.SQL)
	}
	if !strings.Contains(resp.Insight, "U00001") {
		t.Errorf("insight = %q, want model narration", resp.Insight)
	}
}

func TestChat_ProviderFailureFallsBackToRules(t *testing.T) {
	q := &stubQuerier{result: sampleResult()}
	p := &stubProvider{err: errors.New("connection refused")}
	a := New(q, p)

	resp := a.Chat(context.Background(), "找出消费最高的用户")

	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	if !strings.Contains(resp.SQL, "total_spend") {
		t.Errorf("expected rule SQL after provider failure, got %s", resp.SQL)
	}
	if resp.Insight != fallbackInsight {
		t.Errorf("expected canned insight after provider failure, got %q", resp.Insight)
	}
	if len(resp.Data) != 2 {
		t.Errorf("data must still be returned, got %d rows", len(resp.Data))
	}
}

func TestChat_QueryFailureReturnsError(t *testing.T) {
	q := &stubQuerier{err: errors.New("syntax error")}
	a := New(q, nil)

	resp := a.Chat(context.Background(), "找出消费最高的用户")

	if resp.Error == "" {
		t.Fatal("expected error in response")
	}
	if !strings.Contains(resp.Error, "SQL执行错误") {
		t.Errorf("error = %q, want SQL execution prefix", resp.Error)
	}
	if resp.SQL == "" {
		t.Error("SQL must be reported even when execution fails")
	}
	if resp.Data != nil {
		t.Error("no data expected on query failure")
	}
}

func TestChat_QuickAnswerSkipsQuery(t *testing.T) {
	q := &stubQuerier{result: sampleResult()}
	a := New(q, nil)

	resp := a.Chat(context.Background(), "帮助")

	if resp.Insight == "" || resp.SQL != "" {
		t.Errorf("quick answer must not generate SQL: %+v", resp)
	}
	if q.lastSQL != "" {
		t.Error("quick answer must not hit the database")
	}
}

func TestFormatResult(t *testing.T) {
	text := formatResult(sampleResult())
	if !strings.Contains(text, "user_id | total_spend") {
		t.Errorf("header missing: %q", text)
	}
	if !strings.Contains(text, "U00001") {
		t.Errorf("row missing: %q", text)
	}

	if got := formatResult(nil); got != "无数据" {
		t.Errorf("nil result = %q", got)
	}
	if got := formatResult(&models.QueryResult{Columns: []string{"a"}}); got != "无数据" {
		t.Errorf("empty result = %q", got)
	}
}
