package layout

import "strings"

// BreakLines 按可用宽度把文本折成多行。
// 以空白切分为词并贪心拼接（词间以单个空格连接）；单个词宽于可用宽度时，
// 退化为逐字符累积，最后一段子行保持打开，后续词仍可接在其后。
// 空文本（或仅含空白）返回只含空串的切片，调用方应视为“无可见文本”。
// availableWidth <= 0 时不做折行，整段文本作为一行返回。
func BreakLines(text string, availableWidth float64, font FontSpec, m Measurer) []string {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return []string{""}
	}
	if availableWidth <= 0 {
		return []string{strings.Join(tokens, " ")}
	}

	fits := func(s string) bool { return m.Measure(s, font) <= availableWidth }

	var lines []string
	current := ""
	for _, token := range tokens {
		candidate := token
		if current != "" {
			candidate = current + " " + token
		}
		if fits(candidate) {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
			current = ""
		}
		if fits(token) {
			current = token
			continue
		}
		// 超宽词：逐字符切分，单个字符即使超宽也独占一行
		for _, r := range token {
			next := current + string(r)
			if current == "" || fits(next) {
				current = next
				continue
			}
			lines = append(lines, current)
			current = string(r)
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// widest 返回各行测量宽度中的最大值。
func widest(lines []string, font FontSpec, m Measurer) float64 {
	max := 0.0
	for _, line := range lines {
		if w := m.Measure(line, font); w > max {
			max = w
		}
	}
	return max
}
