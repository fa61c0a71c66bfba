package flowdt

import (
	"strconv"
	"strings"
)

// PrintTree renders the published tree as an indented multi-line dump,
// each line prefixed by prefix. Internal nodes show the tested field
// and pivot; leaves show their id and the (priority, match) of every
// rule they hold.
func (c *Classifier) PrintTree(prefix string) string {
	c.ensureBuilt()
	var sb strings.Builder
	printNode(&sb, c.loadRoot(), prefix)
	return sb.String()
}

func printNode(sb *strings.Builder, n *node, prefix string) {
	if n == nil {
		sb.WriteString(prefix)
		sb.WriteString("<empty>\n")
		return
	}
	if n.isLeaf() {
		sb.WriteString(prefix)
		sb.WriteString("leaf#")
		sb.WriteString(strconv.FormatUint(n.leafID, 10))
		sb.WriteString(" (")
		sb.WriteString(strconv.Itoa(len(n.rules)))
		sb.WriteString(" rules)\n")
		for _, r := range n.rules {
			sb.WriteString(prefix)
			sb.WriteString("  prio=")
			sb.WriteString(strconv.FormatUint(uint64(r.Priority()), 10))
			sb.WriteString(" match=")
			sb.WriteString(r.Match().String())
			sb.WriteByte('\n')
		}
		return
	}

	sb.WriteString(prefix)
	sb.WriteString("test ")
	sb.WriteString(n.field.String())
	switch n.test {
	case testExact:
		sb.WriteString(" >= 0x")
		sb.WriteString(strconv.FormatUint(uint64(n.value), 16))
	case testPrefix:
		sb.WriteString(" prefix 0x")
		sb.WriteString(strconv.FormatUint(uint64(n.value), 16))
		sb.WriteByte('/')
		sb.WriteString(strconv.Itoa(int(n.plen)))
	default:
		sb.WriteString(" range (reserved)")
	}
	sb.WriteByte('\n')
	printNode(sb, n.left, prefix+"  ")
	printNode(sb, n.right, prefix+"  ")
}
