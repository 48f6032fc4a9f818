// Jarvis - AI E-commerce Data Analysis System
// Copyright 2026 gongdinghuan
// SPDX-License-Identifier: MIT
// https://github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System

package agent

import (
	"fmt"
	"strings"

	"github.com/gongdinghuan/AI-E-commerce-Data-Analysis-System/internal/models"
)

// maxInsightRows caps how much query output is embedded in the
// narration prompt.
const maxInsightRows = 20

// schemaDescription is shipped verbatim to the model so generated SQL
// references real columns and the Chinese enum values stored in them.
const schemaDescription = `数据库包含以下表:

1. orders (订单表):
   - order_id: 订单ID
   - user_id: 用户ID
   - product_id: 商品ID
   - quantity: 购买数量
   - order_date: 订单日期
   - status: 订单状态 (已完成/已退款/待发货/已取消)
   - channel: 渠道 (直播/搜索/推荐/活动/复购)
   - discount: 折扣
   - price: 商品单价
   - cost: 成本
   - category: 商品类目 (电子产品/服装/家居/美妆/食品/运动)
   - amount: 订单金额
   - profit: 利润
   - city: 城市

2. users (用户表):
   - user_id: 用户ID
   - username: 用户名
   - register_date: 注册日期
   - city: 城市
   - age: 年龄
   - gender: 性别
   - vip_level: VIP等级

3. products (商品表):
   - product_id: 商品ID
   - product_name: 商品名称
   - category: 类目
   - price: 价格
   - cost: 成本
   - stock: 库存
   - rating: 评分

4. funnel (漏斗表):
   - stage: 阶段 (浏览/加购/下单/支付)
   - count: 会话数
   - date: 日期`

const sqlPromptTemplate = `你是一个SQL专家。根据用户的自然语言问题，生成DuckDB SQL查询语句。

%s

注意事项:
1. 只返回SQL语句，不要有其他解释
2. 使用DuckDB语法
3. 日期函数使用 CURRENT_DATE, DATE_TRUNC 等
4. 确保SQL语法正确

用户问题: %s

SQL查询:`

const insightPromptTemplate = `你是一个电商数据分析专家，名叫Jarvis。请根据以下数据回答用户的问题。

用户问题: %s

查询结果:
%s

请用简洁专业的语言回答，包含:
1. 直接回答问题
2. 关键数据指标
3. 如果合适，给出业务建议

回答:`

func sqlPrompt(question string) string {
	return fmt.Sprintf(sqlPromptTemplate, schemaDescription, question)
}

func insightPrompt(question string, result *models.QueryResult) string {
	return fmt.Sprintf(insightPromptTemplate, question, formatResult(result))
}

// formatResult renders a query result as a compact pipe-separated
// table, truncated to maxInsightRows.
func formatResult(result *models.QueryResult) string {
	if result == nil || len(result.Rows) == 0 {
		return "无数据"
	}

	var sb strings.Builder
	sb.WriteString(strings.Join(result.Columns, " | "))
	sb.WriteByte('\n')

	rows := result.Rows
	if len(rows) > maxInsightRows {
		rows = rows[:maxInsightRows]
	}
	for _, row := range rows {
		cells := make([]string, len(result.Columns))
		for i, col := range result.Columns {
			cells[i] = fmt.Sprintf("%v", row[col])
		}
		sb.WriteString(strings.Join(cells, " | "))
		sb.WriteByte('\n')
	}
	if len(result.Rows) > maxInsightRows {
		fmt.Fprintf(&sb, "... 共%d行\n", len(result.Rows))
	}
	return sb.String()
}

// sanitizeSQL strips markdown code fences and surrounding noise from a
// model response so the remainder can be executed directly.
func sanitizeSQL(raw string) string {
	s := strings.ReplaceAll(raw, "```sql", "")
	s = strings.ReplaceAll(s, "```SQL", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
