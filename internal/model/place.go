// Package model はドメインモデルを定義する。
package model

import "time"

// Location は緯度・経度のペアを表す。
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Place は旅行先（観光地）を表す。
type Place struct {
	ID          string
	Name        string
	Description string
	Location    Location
	Rating      float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PlacePatch はPlaceの部分更新を表す。
// nilのフィールドは「リクエストに含まれなかった」ことを意味し、更新されない。
// 値0や空文字列はnilと区別され、明示的な上書きとして扱われる。
type PlacePatch struct {
	Name        *string
	Description *string
	Location    *Location
	Rating      *float64
}

// IsEmpty は更新対象のフィールドが1つもない場合にtrueを返す。
func (p PlacePatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Location == nil && p.Rating == nil
}

// PlaceFilter は一覧取得の絞り込み条件を表す。
// Name/Descriptionは部分一致、MinRatingは指定値以上での絞り込み。
// nilのフィールドは条件なしを意味する。
type PlaceFilter struct {
	Name        *string
	Description *string
	MinRating   *float64
}
