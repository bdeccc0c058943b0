package domain

import "time"

// Activity 计时条目（对应 activities 表）
// End 为 nil 表示activity仍处于open状态；close操作设置End后不可再打开
type Activity struct {
	ActivityID  string     `db:"activity_id" json:"activity_id"`
	UserID      string     `db:"user_id" json:"user_id"`
	TagID       string     `db:"tag_id" json:"tag_id"`
	SubtagID    *string    `db:"subtag_id" json:"subtag_id,omitempty"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Start       time.Time  `db:"start" json:"start"`
	End         *time.Time `db:"end" json:"end,omitempty"`
}

// IsOpen activity是否仍在计时
func (a *Activity) IsOpen() bool {
	return a.End == nil
}

// DurationMinutes 按分钟计算时长（可带小数）
// open的activity用now作为终点
func (a *Activity) DurationMinutes(now time.Time) float64 {
	end := now
	if a.End != nil {
		end = *a.End
	}
	return end.Sub(a.Start).Minutes()
}

// ActivityPatch 部分更新
// 改动tag_id/subtag_id时，service会先对结果对重新做ownership校验
// SubtagID 出现且为null时表示清除subtag
type ActivityPatch struct {
	Name        Optional[string] `json:"name"`
	Description Optional[string] `json:"description"`
	TagID       Optional[string] `json:"tag_id"`
	SubtagID    Optional[string] `json:"subtag_id"`
}
