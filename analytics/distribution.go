package analytics

import "sort"

// TagShare 某个情绪标签的出现次数和占比
type TagShare struct {
	Tag        Tag `json:"tag"`
	Count      int `json:"count"`
	Percentage int `json:"percentage"`
}

// ComputeDistribution 统计所有标签的出现频率，多标签记录的每个标签都计一次
func (e *Engine) ComputeDistribution(records []Record) []TagShare {
	counts := make(map[Tag]int)
	var order []Tag
	total := 0
	for _, r := range canonical(records) {
		for _, t := range r.Tags {
			if counts[t] == 0 {
				order = append(order, t)
			}
			counts[t]++
			total++
		}
	}

	shares := make([]TagShare, 0, len(order))
	for _, t := range order {
		shares = append(shares, TagShare{
			Tag:        t,
			Count:      counts[t],
			Percentage: percent(counts[t], total),
		})
	}
	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Count > shares[j].Count
	})
	return shares
}
