package domain

// TagType 顶层分类（对应 tag_types 表）
// 每个用户维护自己的tag type，tag可选归属一个tag type
type TagType struct {
	TagTypeID string `db:"tag_type_id" json:"tag_type_id"`
	UserID    string `db:"user_id" json:"user_id"`
	Name      string `db:"name" json:"name"`
}

// TagTypePatch 部分更新（只应用显式出现的字段）
type TagTypePatch struct {
	Name Optional[string] `json:"name"`
}
