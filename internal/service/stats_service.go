package service

import (
	"context"
	"time"

	"chronary-tracker/internal/domain"
	"chronary-tracker/internal/repository"

	"go.uber.org/zap"
)

// TagStat 按tag聚合的平均时长
type TagStat struct {
	TagID                  string  `json:"tag_id"`
	TagName                string  `json:"tag_name"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
}

// SubtagStat 按subtag聚合的平均时长（带父tag_id）
type SubtagStat struct {
	SubtagID               string  `json:"subtag_id"`
	SubtagName             string  `json:"subtag_name"`
	TagID                  string  `json:"tag_id"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
}

// TagTypeStat 按tag type聚合的平均时长
type TagTypeStat struct {
	TagTypeID              string  `json:"tag_type_id"`
	TagTypeName            string  `json:"tag_type_name"`
	AverageDurationMinutes float64 `json:"average_duration_minutes"`
}

// Stats 单个粒度（daily或weekly）的三维结果
// 列表顺序为扫描中首次出现的顺序，契约上不作保证
type Stats struct {
	ByTags     []TagStat     `json:"by_tags"`
	BySubtags  []SubtagStat  `json:"by_subtags"`
	ByTagTypes []TagTypeStat `json:"by_tag_types"`
}

// ActivityStats daily+weekly统计
type ActivityStats struct {
	Daily  Stats `json:"daily"`
	Weekly Stats `json:"weekly"`
}

// StatsService 把activity区间折叠成daily/weekly的分维度平均时长
// 规则：
//   - duration按分钟（可带小数）；open的activity用now-start
//   - 平均值 = 各bucket内该维度的总和 / 该维度出现过的bucket数
//     （分母是"有活动的天/周数"，不是activity条数）
//   - 全部按UTC计算
type StatsService struct {
	activities repository.ActivitiesRepository
	tags       repository.TagsRepository
	subtags    repository.SubtagsRepository
	tagTypes   repository.TagTypesRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewStatsService 创建统计服务
func NewStatsService(
	activities repository.ActivitiesRepository,
	tags repository.TagsRepository,
	subtags repository.SubtagsRepository,
	tagTypes repository.TagTypesRepository,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		activities: activities,
		tags:       tags,
		subtags:    subtags,
		tagTypes:   tagTypes,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock 替换时钟（测试用）
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	return s
}

// ComputeStats 计算[start, end]内的daily和weekly统计
// end <= start 返回domain.ErrInvalidRange；weekly先把范围向外扩展到整周
func (s *StatsService) ComputeStats(ctx context.Context, userID string, start, end time.Time) (*ActivityStats, error) {
	if !end.After(start) {
		return nil, domain.ErrInvalidRange
	}

	names, err := s.loadTaxonomy(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()

	daily, err := s.computeBucketed(ctx, userID, start, end, now, names, dayBucket)
	if err != nil {
		return nil, err
	}

	weekStart, weekEnd := expandToWholeWeeks(start, end)
	if !weekStart.Before(weekEnd) {
		return nil, domain.ErrInvalidRange
	}
	weekly, err := s.computeBucketed(ctx, userID, weekStart, weekEnd, now, names, weekBucket)
	if err != nil {
		return nil, err
	}

	return &ActivityStats{Daily: *daily, Weekly: *weekly}, nil
}

// ---- bucketing helpers ----

// dayBucket activity.start所在的UTC日历日
func dayBucket(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// weekBucket activity.start所在ISO周的周一00:00（UTC）
func weekBucket(t time.Time) time.Time {
	d := dayBucket(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	return d.AddDate(0, 0, -offset)
}

// expandToWholeWeeks 把范围向外扩到整周：
// start退到所在周的周一00:00:00.000000，end进到所在周的周日23:59:59.999999
func expandToWholeWeeks(start, end time.Time) (time.Time, time.Time) {
	weekStart := weekBucket(start)
	weekEnd := weekBucket(end).AddDate(0, 0, 6).
		Add(23*time.Hour + 59*time.Minute + 59*time.Second + 999999*time.Microsecond)
	return weekStart, weekEnd
}

// ---- folding ----

// dimAccumulator 单个维度（tag/subtag/tag type）的累加器
// 平均值只需要总时长和出现过的bucket集合；order保留首次出现顺序
type dimAccumulator struct {
	order   []string
	totals  map[string]float64
	buckets map[string]map[time.Time]struct{}
}

func newDimAccumulator() *dimAccumulator {
	return &dimAccumulator{
		totals:  map[string]float64{},
		buckets: map[string]map[time.Time]struct{}{},
	}
}

func (d *dimAccumulator) add(id string, bucket time.Time, minutes float64) {
	if _, ok := d.totals[id]; !ok {
		d.order = append(d.order, id)
		d.buckets[id] = map[time.Time]struct{}{}
	}
	d.totals[id] += minutes
	d.buckets[id][bucket] = struct{}{}
}

// average 总时长 / 出现过的bucket数
func (d *dimAccumulator) average(id string) float64 {
	return d.totals[id] / float64(len(d.buckets[id]))
}

// taxonomyNames 统计输出需要的名称解析表
type taxonomyNames struct {
	tagName      map[string]string
	tagTypeOfTag map[string]string // tagID -> tagTypeID（仅tag有归属时）
	subtagName   map[string]string
	subtagTag    map[string]string // subtagID -> tagID
	tagTypeName  map[string]string
}

func (s *StatsService) loadTaxonomy(ctx context.Context, userID string) (*taxonomyNames, error) {
	tags, err := s.tags.ListTags(ctx, userID)
	if err != nil {
		return nil, err
	}
	subtags, err := s.subtags.ListSubtags(ctx, userID)
	if err != nil {
		return nil, err
	}
	tagTypes, err := s.tagTypes.ListTagTypes(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := &taxonomyNames{
		tagName:      map[string]string{},
		tagTypeOfTag: map[string]string{},
		subtagName:   map[string]string{},
		subtagTag:    map[string]string{},
		tagTypeName:  map[string]string{},
	}
	for _, t := range tags {
		names.tagName[t.TagID] = t.Name
		if t.TagTypeID != nil {
			names.tagTypeOfTag[t.TagID] = *t.TagTypeID
		}
	}
	for _, st := range subtags {
		names.subtagName[st.SubtagID] = st.Name
		names.subtagTag[st.SubtagID] = st.TagID
	}
	for _, tt := range tagTypes {
		names.tagTypeName[tt.TagTypeID] = tt.Name
	}
	return names, nil
}

// computeBucketed 取[start, end]内的activities，按bucketOf分桶后
// 对tag/subtag/tag type三个维度独立求平均
func (s *StatsService) computeBucketed(
	ctx context.Context,
	userID string,
	start, end time.Time,
	now time.Time,
	names *taxonomyNames,
	bucketOf func(time.Time) time.Time,
) (*Stats, error) {
	activities, err := s.activities.ListActivitiesInRange(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	tagAcc := newDimAccumulator()
	subtagAcc := newDimAccumulator()
	tagTypeAcc := newDimAccumulator()

	// 区间查询按start降序返回；为了让输出顺序贴近时间先后，倒序扫描
	for i := len(activities) - 1; i >= 0; i-- {
		a := activities[i]
		bucket := bucketOf(a.Start)
		minutes := a.DurationMinutes(now)

		tagAcc.add(a.TagID, bucket, minutes)
		if a.SubtagID != nil {
			subtagAcc.add(*a.SubtagID, bucket, minutes)
		}
		if tagTypeID, ok := names.tagTypeOfTag[a.TagID]; ok {
			tagTypeAcc.add(tagTypeID, bucket, minutes)
		}
	}

	stats := &Stats{
		ByTags:     []TagStat{},
		BySubtags:  []SubtagStat{},
		ByTagTypes: []TagTypeStat{},
	}
	for _, id := range tagAcc.order {
		stats.ByTags = append(stats.ByTags, TagStat{
			TagID:                  id,
			TagName:                names.tagName[id],
			AverageDurationMinutes: tagAcc.average(id),
		})
	}
	for _, id := range subtagAcc.order {
		stats.BySubtags = append(stats.BySubtags, SubtagStat{
			SubtagID:               id,
			SubtagName:             names.subtagName[id],
			TagID:                  names.subtagTag[id],
			AverageDurationMinutes: subtagAcc.average(id),
		})
	}
	for _, id := range tagTypeAcc.order {
		stats.ByTagTypes = append(stats.ByTagTypes, TagTypeStat{
			TagTypeID:              id,
			TagTypeName:            names.tagTypeName[id],
			AverageDurationMinutes: tagTypeAcc.average(id),
		})
	}
	return stats, nil
}
