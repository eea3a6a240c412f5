package ingredient

import "strings"

// Normalize 小寫並去除前後空白
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Matches 判斷兩個食材名稱是否相符
// 不分大小寫、去空白後，任一方包含另一方即視為相符，評分與索引查詢共用此判斷
func Matches(a, b string) bool {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}

// MatchesAny 是否與列表中任一項相符
func MatchesAny(name string, candidates []string) bool {
	for _, c := range candidates {
		if Matches(name, c) {
			return true
		}
	}
	return false
}
