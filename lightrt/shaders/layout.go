package shaders

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gekko3d/shadowpong/lightrt/core"
)

// ParamBlockName is the WGSL struct every lighting pass declares.
const ParamBlockName = "LightParams"

var (
	lineComment = regexp.MustCompile(`//[^\n]*`)
	member      = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:\s*([A-Za-z0-9_<>]+)$`)
)

// ParseStruct resolves the layout of a WGSL struct declared in src.
func ParseStruct(src, name string) (core.BlockLayout, error) {
	src = lineComment.ReplaceAllString(src, "")

	header := regexp.MustCompile(`struct\s+` + regexp.QuoteMeta(name) + `\s*\{`)
	loc := header.FindStringIndex(src)
	if loc == nil {
		return core.BlockLayout{}, fmt.Errorf("struct %s not declared", name)
	}
	body := src[loc[1]:]
	end := strings.Index(body, "}")
	if end < 0 {
		return core.BlockLayout{}, fmt.Errorf("struct %s is not closed", name)
	}

	var names, types []string
	for _, part := range strings.Split(body[:end], ",") {
		part = strings.Join(strings.Fields(part), " ")
		if part == "" {
			continue
		}
		m := member.FindStringSubmatch(part)
		if m == nil {
			return core.BlockLayout{}, fmt.Errorf("struct %s: unsupported member %q", name, part)
		}
		names = append(names, m[1])
		types = append(types, strings.ReplaceAll(m[2], " ", ""))
	}
	return core.NewBlockLayout(names, types)
}

// ValidateParamBlock fails with core.ErrResourceCreation when the light
// parameter block in src differs from the host-side layout.
func ValidateParamBlock(shader, src string) error {
	got, err := ParseStruct(src, ParamBlockName)
	if err != nil {
		return fmt.Errorf("%w: %s shader: %v", core.ErrResourceCreation, shader, err)
	}

	want := core.LightParamsLayout()
	if !got.Equal(want) {
		return fmt.Errorf("%w: %s shader: %s layout %s does not match host layout %s",
			core.ErrResourceCreation, shader, ParamBlockName, describe(got), describe(want))
	}
	return nil
}

func describe(l core.BlockLayout) string {
	parts := make([]string, len(l.Fields))
	for i, f := range l.Fields {
		parts[i] = fmt.Sprintf("%s:%s@%d", f.Name, f.Type, f.Offset)
	}
	return fmt.Sprintf("{%s}/%d", strings.Join(parts, " "), l.Size)
}
