package node

import (
	"strings"
	"unicode/utf8"
)

// TruncateByRunes 保留开头 maxRunes 个字符；maxRunes <= 0 返回空串。
// 与 TailByRunes 相反，0 在这里是长度而不是“不限制”。
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// TailByRunes 保留末尾 maxRunes 个字符；maxRunes <= 0 表示不限制（对应未配置的上下文上限），原样返回。
// 截断后从第一个段落或空白边界开始，避免以半个句子开头。
func TailByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	total := utf8.RuneCountInString(s)
	if total <= maxRunes {
		return s
	}
	skip := total - maxRunes
	n := 0
	cut := len(s)
	for i := range s {
		if n == skip {
			cut = i
			break
		}
		n++
	}
	tail := s[cut:]
	if i := strings.Index(tail, "\n\n"); i >= 0 && i < len(tail)/2 {
		return strings.TrimLeft(tail[i:], "\n")
	}
	if i := strings.IndexAny(tail, " \n\t"); i >= 0 && i < len(tail)/4 {
		return strings.TrimLeft(tail[i:], " \n\t")
	}
	return tail
}
