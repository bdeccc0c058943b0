package domain

// Tag 标签领域模型（对应 tags 表）
// TagTypeID 可为空；非空时必须指向同一用户的tag type
type Tag struct {
	TagID     string  `db:"tag_id" json:"tag_id"`
	UserID    string  `db:"user_id" json:"user_id"`
	Name      string  `db:"name" json:"name"`
	Color     string  `db:"color" json:"color"`
	TagTypeID *string `db:"tag_type_id" json:"tag_type_id,omitempty"`
}

// TagPatch 部分更新
// TagTypeID 出现且为null时表示清除归属
type TagPatch struct {
	Name      Optional[string] `json:"name"`
	Color     Optional[string] `json:"color"`
	TagTypeID Optional[string] `json:"tag_type_id"`
}
