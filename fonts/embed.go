package fonts

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Builtin 是随程序分发的字体文件。
type Builtin struct {
	Name   string // 资源名，例如 "go-bold"，可写作 builtin:go-bold
	Family string
	Bold   bool
	Data   []byte
}

var builtins = []Builtin{
	{Name: "go-regular", Family: "Go", Data: goregular.TTF},
	{Name: "go-bold", Family: "Go", Bold: true, Data: gobold.TTF},
	{Name: "lmroman-regular", Family: "Latin Modern Roman", Data: lmroman10regular.TTF},
	{Name: "lmroman-bold", Family: "Latin Modern Roman", Bold: true, Data: lmroman10bold.TTF},
}

// Builtins 返回全部内置字体。
func Builtins() []Builtin {
	out := make([]Builtin, len(builtins))
	copy(out, builtins)
	return out
}

// Families 返回内置字族名，按字母排序且去重。
func Families() []string {
	seen := map[string]bool{}
	var out []string
	for _, b := range builtins {
		if !seen[b.Family] {
			seen[b.Family] = true
			out = append(out, b.Family)
		}
	}
	sort.Strings(out)
	return out
}

// IsBuiltin 报告 src 是否引用内置字体（builtin: 或 built-in: 前缀）。
func IsBuiltin(src string) bool {
	return strings.HasPrefix(src, "builtin:") || strings.HasPrefix(src, "built-in:")
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:go-bold" 或直接 "go-bold"。
func Load(name string) ([]byte, error) {
	key := strings.TrimPrefix(strings.TrimPrefix(name, "builtin:"), "built-in:")
	for _, b := range builtins {
		if strings.EqualFold(b.Name, key) {
			return b.Data, nil
		}
	}
	return nil, fmt.Errorf("找不到内置字体资源 %s", name)
}
