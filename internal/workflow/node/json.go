package node

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ExtractJSON 返回模型输出中第一个完整的 JSON 对象或数组。
// 模型常把 JSON 包在 markdown 代码块或说明文字里；找不到时返回去除首尾空白的原文。
func ExtractJSON(s string) string {
	raw := strings.TrimSpace(s)
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return raw
	}

	var v json.RawMessage
	dec := json.NewDecoder(strings.NewReader(raw[start:]))
	if err := dec.Decode(&v); err == nil {
		return string(bytes.TrimSpace(v))
	}

	// 解码失败（例如被截断）时退回到最外层括号之间的内容
	closer := "}"
	if raw[start] == '[' {
		closer = "]"
	}
	if end := strings.LastIndex(raw, closer); end > start {
		return raw[start : end+1]
	}
	return raw
}

// schemaUnsupportedMarkers 上游不支持 response_format / json_schema 时的典型报错片段
var schemaUnsupportedMarkers = []string{
	"response_format",
	"json_schema",
	"response_schema",
	"unknown parameter",
}

// SchemaUnsupported 判断错误是否表示上游不接受结构化输出参数
func SchemaUnsupported(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range schemaUnsupportedMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
