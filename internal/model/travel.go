// Package model はドメインモデルを定義する。
package model

import "time"

// Travel は旅行計画を表す。
// 計画の内容はスキーマを固定しないオープンな属性集合で、
// 任意のキーに対する部分パッチで更新される。
type Travel struct {
	ID         string
	Attributes map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
