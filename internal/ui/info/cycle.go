package info

// Cycle walks every style × word pair in order, wrapping at the end. It
// drives the debug simulate action.
type Cycle struct {
	next int
}

func (c *Cycle) Next(styles, words []string) (style, word string, ok bool) {
	if len(styles) == 0 || len(words) == 0 {
		return "", "", false
	}
	i := c.next % (len(styles) * len(words))
	c.next = i + 1
	return styles[i/len(words)], words[i%len(words)], true
}
