package core

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/flowstate/flowstate-dashboard/internal/domain/model"
	"github.com/flowstate/flowstate-dashboard/internal/http/uiutil"
)

// Deps holds optional dependencies for constructing the core template func map.
type Deps struct {
	Template           **template.Template
	ContentTemplateFor func(string) string
}

// Funcs returns a template.FuncMap containing helpers that are broadly useful across templates.
func Funcs(deps Deps) template.FuncMap {
	funcs := template.FuncMap{
		"sectionTmpl":    deps.ContentTemplateFor,
		"friendlyTime":   func(ts any) string { return uiutil.FormatFriendlyDateTime(toTime(ts)) },
		"relativeTime":   relativeTime,
		"timeTag":        timeTag,
		"formatNumber":   FormatNumber,
		"formatMinutes":  uiutil.FormatMinutes,
		"formatDuration": uiutil.FormatDuration,
		"barWidth":       BarWidth,
		"truncateText":   uiutil.TruncateWithEllipsis,
	}

	funcs["renderSection"] = func(page string, data any) (template.HTML, error) {
		if deps.Template == nil || *deps.Template == nil {
			return "", errors.New("template not initialized")
		}
		var buf bytes.Buffer
		if err := (*deps.Template).ExecuteTemplate(&buf, deps.ContentTemplateFor(page), data); err != nil {
			return "", err
		}
		// #nosec G203 - rendered by our own html/template set; values were escaped during ExecuteTemplate.
		return template.HTML(buf.String()), nil
	}
	return funcs
}

func toTime(ts any) time.Time {
	switch v := ts.(type) {
	case time.Time:
		return v
	case *time.Time:
		if v != nil {
			return *v
		}
	case model.Timestamp:
		return v.Time
	case *model.Timestamp:
		if v != nil {
			return v.Time
		}
	}
	return time.Time{}
}

func relativeTime(ts any) string {
	t := toTime(ts)
	if t.IsZero() {
		return ""
	}
	return uiutil.FriendlyRelativeTime(t)
}

func timeTag(ts any) template.HTML {
	t := toTime(ts)
	if t.IsZero() {
		return ""
	}
	// #nosec G203 - constructed from escaped values only
	return template.HTML(fmt.Sprintf(
		"<time datetime=\"%s\" title=\"%s\">%s</time>",
		t.UTC().Format(time.RFC3339),
		template.HTMLEscapeString(t.Local().Format(time.RFC1123)),
		template.HTMLEscapeString(uiutil.FormatFriendlyDateTime(t)),
	))
}

// FormatNumber formats an integer with comma separators for thousands.
func FormatNumber(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + (len(s)-1)/3 + 1)
	if neg {
		b.WriteByte('-')
	}
	prefix := len(s) % 3
	if prefix == 0 {
		prefix = 3
	}
	b.WriteString(s[:prefix])
	for i := prefix; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// BarWidth renders a chart bar percentage as a CSS width. Values are clamped
// to [0, 100] and bars with any duration get a visible minimum.
func BarWidth(percent float64) template.CSS {
	switch {
	case percent <= 0:
		percent = 0
	case percent < 2:
		percent = 2
	case percent > 100:
		percent = 100
	}
	// #nosec G203 - numeric value formatted by strconv
	return template.CSS(strconv.FormatFloat(percent, 'f', 1, 64) + "%")
}
