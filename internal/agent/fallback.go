// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package agent

import "strings"

// defaultSQL answers questions no rule recognizes.
const defaultSQL = "SELECT * FROM orders LIMIT 10"

// fallbackInsight is returned when no language model is available to
// narrate query results.
const fallbackInsight = "基于数据分析，我发现以下关键信息。请查看数据表格了解详细信息。如需更深入的分析，请配置LLM API密钥。"

// fallbackRule maps a question to a canned query. Every keyword group
// must be satisfied by at least one of its alternatives for the rule
// to fire; rules are tried in declaration order.
type fallbackRule struct {
	name   string
	groups [][]string
	sql    string
}

var fallbackRules = []fallbackRule{
	{
		name:   "top_spenders",
		groups: [][]string{{"消费", "花费", "spend"}, {"用户", "客户", "user"}},
		sql: `SELECT user_id, SUM(amount) AS total_spend, COUNT(*) AS order_count
FROM orders WHERE status = '已完成'
GROUP BY user_id ORDER BY total_spend DESC LIMIT 10`,
	},
	{
		name:   "refund_by_city",
		groups: [][]string{{"退货", "退款", "refund"}, {"城市", "city"}},
		sql: `SELECT city,
    COUNT(CASE WHEN status = '已退款' THEN 1 END) * 100.0 / COUNT(*) AS refund_rate,
    COUNT(*) AS total_orders
FROM orders GROUP BY city ORDER BY refund_rate DESC`,
	},
	{
		name:   "category_gmv",
		groups: [][]string{{"销售额", "营收", "gmv"}, {"类目", "品类", "分类", "category"}},
		sql: `SELECT category, SUM(amount) AS gmv, COUNT(*) AS orders
FROM orders WHERE status = '已完成'
GROUP BY category ORDER BY gmv DESC`,
	},
	{
		name:   "channel_analysis",
		groups: [][]string{{"渠道", "channel"}},
		sql: `SELECT channel, SUM(amount) AS gmv, COUNT(DISTINCT user_id) AS users
FROM orders WHERE status = '已完成'
GROUP BY channel ORDER BY gmv DESC`,
	},
	{
		name:   "daily_trend",
		groups: [][]string{{"每日", "日销", "趋势", "trend"}},
		sql: `SELECT DATE_TRUNC('day', order_date) AS date,
    SUM(amount) AS daily_sales, COUNT(*) AS orders
FROM orders WHERE status = '已完成'
GROUP BY DATE_TRUNC('day', order_date)
ORDER BY date DESC LIMIT 30`,
	},
	{
		name:   "top_products",
		groups: [][]string{{"商品", "产品", "product"}, {"销量", "畅销", "top"}},
		sql: `SELECT product_id, SUM(quantity) AS total_qty, SUM(amount) AS revenue
FROM orders WHERE status = '已完成'
GROUP BY product_id ORDER BY total_qty DESC LIMIT 10`,
	},
}

// ruleSQL resolves a question against the fallback rules, returning
// the matched query and rule name, or the default scan.
func ruleSQL(question string) (sql, rule string) {
	q := strings.ToLower(question)
	for _, r := range fallbackRules {
		if matchesGroups(q, r.groups) {
			return r.sql, r.name
		}
	}
	return defaultSQL, "default"
}

func matchesGroups(q string, groups [][]string) bool {
	for _, alternatives := range groups {
		matched := false
		for _, kw := range alternatives {
			if strings.Contains(q, kw) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// quickAnswer serves canned responses for meta questions that need no
// query at all. Returns "" when the question is not a meta question.
func quickAnswer(question string) string {
	switch {
	case strings.Contains(question, "帮助"):
		return `我是Jarvis，您的AI数据分析助手。我可以帮您:

📊 数据查询: "找出消费最高的10个用户"
📈 趋势分析: "最近一周的销售趋势"
🔍 问题诊断: "为什么北京退货率这么高"
💡 业务建议: "如何提高复购率"

直接用自然语言告诉我您想了解什么！`
	case strings.Contains(question, "你是谁"):
		return "我是Jarvis，一个基于AI的电商数据分析助手。我可以帮助您用自然语言查询和分析电商数据。"
	default:
		return ""
	}
}
