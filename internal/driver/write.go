package driver

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

type variantInfo struct {
	Reference string   `json:"reference"`
	Index     int      `json:"index"`
	Seed      int64    `json:"seed"`
	Cached    bool     `json:"cached,omitempty"`
	Applied   []string `json:"applied"`
}

// WriteVariants stores each variant as <dir>/<base>_NNN<ext> with a
// .json file next to it listing the mutations applied. It returns the
// shader paths written.
func WriteVariants(dir, base, ext, reference string, variants []Variant) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(variants))
	for _, v := range variants {
		stem := filepath.Join(dir, fmt.Sprintf("%s_%03d", base, v.Index))
		if err := os.WriteFile(stem+ext, []byte(v.Text), 0o600); err != nil {
			return paths, err
		}
		info := variantInfo{Reference: reference, Index: v.Index, Seed: v.Seed, Cached: v.Cached}
		info.Applied = make([]string, len(v.Applied))
		for i, m := range v.Applied {
			info.Applied[i] = m.String()
		}
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return paths, err
		}
		if err := os.WriteFile(stem+".json", append(data, '\n'), 0o600); err != nil {
			return paths, err
		}
		paths = append(paths, stem+ext)
	}
	return paths, nil
}
