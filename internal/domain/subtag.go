package domain

// Subtag 二级标签（对应 subtags 表）
// 没有user_id列，归属通过父tag的user_id传递
type Subtag struct {
	SubtagID string `db:"subtag_id" json:"subtag_id"`
	TagID    string `db:"tag_id" json:"tag_id"`
	Name     string `db:"name" json:"name"`
}

// SubtagPatch 部分更新（subtag只有name可改）
type SubtagPatch struct {
	Name Optional[string] `json:"name"`
}
