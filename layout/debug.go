package layout

import (
	"encoding/json"
	"os"
)

// WriteDebugJSON 将各字段的排版计划输出为 JSON，便于调试或比对预览与批量结果。
func WriteDebugJSON(plans []Plan, path string) error {
	if len(plans) == 0 {
		return nil
	}
	data, err := json.MarshalIndent(plans, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
