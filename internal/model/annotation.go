// Package model はドメインモデルを定義する。
package model

import "time"

// Annotation はユーザーが旅行先に付ける注釈（行きたい/レビュー）を表す。
// WishとReviewは構造が同一で、格納先テーブルのみが異なる。
// (UserID, PlaceID) の組に一意制約はなく、重複行が許容される。
type Annotation struct {
	ID        string
	UserID    string
	PlaceID   string
	Comment   string
	CreatedAt time.Time
}

// AnnotationKind は注釈の種別を表す。
type AnnotationKind string

const (
	// AnnotationWish は「行きたい」注釈。
	AnnotationWish AnnotationKind = "wish"
	// AnnotationReview はレビュー注釈。
	AnnotationReview AnnotationKind = "review"
)
