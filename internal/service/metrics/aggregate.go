// Package metrics 项目统计：标签分布与成员进度
package metrics

import (
	"fmt"
	"sort"

	"github.com/ashwinyue/next-label/internal/config"
	"github.com/ashwinyue/next-label/internal/model"
	"github.com/ashwinyue/next-label/internal/repository"
)

// 带标签的统计形态
const (
	ShapeCategory = "category"
	ShapeSpan     = "span"
	ShapeRelation = "relation"
)

// Shapes 可统计分布的形态
var Shapes = []string{ShapeCategory, ShapeSpan, ShapeRelation}

// labelTypes 形态对应的标签类型
var labelTypes = map[string]string{
	ShapeCategory: model.LabelTypeCategory,
	ShapeSpan:     model.LabelTypeSpan,
	ShapeRelation: model.LabelTypeRelation,
}

// Input 一次聚合所需的项目数据，均已读取完毕
type Input struct {
	Members       []*model.Member
	Labels        []*model.Label
	ExampleIDs    []int64
	Confirmations []*model.ExampleState
	Tallies       []repository.Tally
	// Shared 共享标注模式；只影响可见性，不合并完成状态
	Shared bool
}

// Options 完成判定规则
type Options struct {
	Completion    string
	RequiredKinds []string
}

// Distribution 一种形态的标签分布
type Distribution struct {
	Shape  string                    `json:"shape"`
	Labels []string                  `json:"labels"`
	ByUser map[string]map[string]int `json:"by_user"`
	Totals map[string]int            `json:"totals"`
}

// Progress 单个成员的进度
type Progress struct {
	UserID    int64  `json:"user"`
	Username  string `json:"username"`
	Role      string `json:"rolename"`
	Done      int    `json:"done"`
	Total     int    `json:"total"`
	Remaining int    `json:"remaining"`
}

// RoleProgress 同一角色成员的进度合计
type RoleProgress struct {
	Members   int `json:"members"`
	Done      int `json:"done"`
	Total     int `json:"total"`
	Remaining int `json:"remaining"`
}

// ProgressReport 成员进度
type ProgressReport struct {
	Total   int                     `json:"total"`
	Members []Progress              `json:"members"`
	ByRole  map[string]RoleProgress `json:"by_role"`
}

// Snapshot 项目统计快照，整体缓存
type Snapshot struct {
	ProjectID     int64                    `json:"project_id"`
	Shared        bool                     `json:"shared"`
	Completion    string                   `json:"completion"`
	Distributions map[string]*Distribution `json:"distributions"`
	Progress      ProgressReport           `json:"progress"`
}

// Aggregate 计算统计快照，不做任何 I/O
func Aggregate(projectID int64, in Input, opts Options) *Snapshot {
	snap := &Snapshot{
		ProjectID:     projectID,
		Shared:        in.Shared,
		Completion:    completionRule(opts),
		Distributions: make(map[string]*Distribution, len(Shapes)),
	}
	usernames := make(map[int64]string, len(in.Members))
	for _, m := range in.Members {
		usernames[m.UserID] = m.Username
	}
	for _, shape := range Shapes {
		snap.Distributions[shape] = distribution(shape, in, usernames)
	}
	snap.Progress = progress(in, opts)
	return snap
}

func completionRule(opts Options) string {
	if opts.Completion == "" {
		return config.CompletionConfirmed
	}
	return opts.Completion
}

func displayName(usernames map[int64]string, userID int64) string {
	if name, ok := usernames[userID]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("user#%d", userID)
}

// distribution 每个出现过的用户一行，每行列出全部标签
func distribution(shape string, in Input, usernames map[int64]string) *Distribution {
	labelType := labelTypes[shape]
	text := make(map[int64]string)
	d := &Distribution{
		Shape:  shape,
		Labels: []string{},
		ByUser: map[string]map[string]int{},
		Totals: map[string]int{},
	}
	for _, l := range in.Labels {
		if l.Type != labelType {
			continue
		}
		text[l.ID] = l.Text
		d.Labels = append(d.Labels, l.Text)
		d.Totals[l.Text] = 0
	}
	sort.Strings(d.Labels)

	for _, t := range in.Tallies {
		if t.Kind != shape {
			continue
		}
		label, ok := text[t.LabelID]
		if !ok {
			continue
		}
		name := displayName(usernames, t.UserID)
		row, ok := d.ByUser[name]
		if !ok {
			row = make(map[string]int, len(d.Labels))
			for _, l := range d.Labels {
				row[l] = 0
			}
			d.ByUser[name] = row
		}
		row[label]++
		d.Totals[label]++
	}
	return d
}

// progress 完成状态按 (成员, Example) 分别记录
func progress(in Input, opts Options) ProgressReport {
	examples := make(map[int64]bool, len(in.ExampleIDs))
	for _, id := range in.ExampleIDs {
		examples[id] = true
	}
	total := len(examples)
	done := doneByUser(in, opts, examples)

	report := ProgressReport{
		Total:   total,
		Members: make([]Progress, 0, len(in.Members)),
		ByRole:  map[string]RoleProgress{},
	}
	for _, m := range in.Members {
		n := len(done[m.UserID])
		p := Progress{
			UserID:    m.UserID,
			Username:  m.Username,
			Role:      m.Role,
			Done:      n,
			Total:     total,
			Remaining: total - n,
		}
		report.Members = append(report.Members, p)

		r := report.ByRole[m.Role]
		r.Members++
		r.Done += p.Done
		r.Total += p.Total
		r.Remaining += p.Remaining
		report.ByRole[m.Role] = r
	}
	sort.Slice(report.Members, func(i, j int) bool {
		return report.Members[i].Username < report.Members[j].Username
	})
	return report
}

// doneByUser 按规则得出每个用户已完成的 Example 集合
func doneByUser(in Input, opts Options, examples map[int64]bool) map[int64]map[int64]bool {
	done := map[int64]map[int64]bool{}
	mark := func(userID, exampleID int64) {
		if !examples[exampleID] {
			return
		}
		if done[userID] == nil {
			done[userID] = map[int64]bool{}
		}
		done[userID][exampleID] = true
	}

	rule := completionRule(opts)
	if rule == config.CompletionConfirmed {
		for _, st := range in.Confirmations {
			mark(st.ConfirmedBy, st.ExampleID)
		}
		return done
	}

	required := make(map[string]bool, len(opts.RequiredKinds))
	for _, k := range opts.RequiredKinds {
		required[k] = true
	}
	// seen[user][example] 为该用户在该 Example 上出现过的必需形态
	seen := map[int64]map[int64]map[string]bool{}
	for _, t := range in.Tallies {
		if len(required) > 0 && !required[t.Kind] {
			continue
		}
		if seen[t.UserID] == nil {
			seen[t.UserID] = map[int64]map[string]bool{}
		}
		if seen[t.UserID][t.ExampleID] == nil {
			seen[t.UserID][t.ExampleID] = map[string]bool{}
		}
		seen[t.UserID][t.ExampleID][t.Kind] = true
	}

	for userID, byExample := range seen {
		for exampleID, kinds := range byExample {
			// 未配置必需形态时 all 与 any 等价
			if rule == config.CompletionAll && len(required) > 0 && len(kinds) < len(required) {
				continue
			}
			mark(userID, exampleID)
		}
	}
	return done
}

// Mine 从快照中取出指定用户的进度；非成员的完成数为 0
func (s *Snapshot) Mine(userID int64) Progress {
	for _, p := range s.Progress.Members {
		if p.UserID == userID {
			return p
		}
	}
	return Progress{UserID: userID, Total: s.Progress.Total, Remaining: s.Progress.Total}
}
