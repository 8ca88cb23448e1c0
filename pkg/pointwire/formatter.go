// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 The emberlink authors

package pointwire

import (
	"fmt"
	"strings"
)

// FormatUpdate renders one update as a single human-readable line.
func (c *Codec) FormatUpdate(u PointUpdate) string {
	name := c.points.Name(u.Index)
	known := ""
	if p, err := c.points.Resolve(u.Index); err != nil || !p.Known {
		known = " (opaque)"
	}
	return fmt.Sprintf("[%s] %-22s idx=%-2d type=%d value=%s%s",
		u.Timestamp.Format("15:04:05.000"), name, u.Index, u.Type, u.Value, known)
}

// FormatBatch renders a decoded frame, one line per update.
func (c *Codec) FormatBatch(updates []PointUpdate) string {
	var b strings.Builder
	for _, u := range updates {
		b.WriteString(c.FormatUpdate(u))
		b.WriteByte('\n')
	}
	return b.String()
}
