package engine

const maxTips = 6

// Assemble builds one suggestion per detected kind, in detection order.
func Assemble(lib *Library, det Detection, language string) []Suggestion {
	out := make([]Suggestion, 0, len(det.Kinds))
	for _, kind := range det.Kinds {
		p, ok := lib.Pattern(kind)
		if !ok {
			continue
		}
		s := Suggestion{
			Type:     kind,
			Severity: p.Severity,
			Title:    p.Title,
			Detail:   renderDetail(p.Detail, det.Evidence[kind]),
			Saving:   p.Saving,
		}
		if snippet, ok := lib.Snippet(kind, language); ok {
			snippet := snippet
			s.OptimizedCode = &snippet
		}
		out = append(out, s)
	}
	return out
}

// SelectTips orders the language's tips so categories relevant to the
// detections come first, then truncates to six.
func SelectTips(lib *Library, language string, kinds []Kind) []Tip {
	tips := lib.Tips(language)

	var priority []TipCategory
	if containsKind(kinds, KindAsyncDebt) {
		priority = append(priority, TipAsync)
	}
	if containsKind(kinds, KindMemoryLeak) || containsKind(kinds, KindIntervalLeak) {
		priority = append(priority, TipMemory)
	}
	if containsKind(kinds, KindNestedLoops) || containsKind(kinds, KindSingleLoop) {
		priority = append(priority, TipPerformance)
	}

	ordered := make([]Tip, 0, len(tips))
	for _, cat := range priority {
		for _, tip := range tips {
			if tip.Category == cat {
				ordered = append(ordered, tip)
			}
		}
	}
	ordered = append(ordered, tips...)

	seen := make(map[Tip]struct{}, len(ordered))
	out := make([]Tip, 0, maxTips)
	for _, tip := range ordered {
		if _, dup := seen[tip]; dup {
			continue
		}
		seen[tip] = struct{}{}
		out = append(out, tip)
		if len(out) == maxTips {
			break
		}
	}
	return out
}
