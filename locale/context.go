package locale

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Context is a set of locales keyed by language tag, one of which is the
// default. A Context is safe for concurrent use.
type Context struct {
	def  language.Tag
	opts []Option

	mu      sync.RWMutex
	locales map[language.Tag]*Locale
}

// NewContext returns a Context whose default locale is [DefaultName].
func NewContext(opts ...Option) *Context {
	return WithDefault(language.Und, opts...)
}

// WithDefault returns a Context whose default locale is tagged tag. Every
// locale created by the Context is configured with opts.
func WithDefault(tag language.Tag, opts ...Option) *Context {
	c := &Context{
		def:     tag,
		opts:    opts,
		locales: make(map[language.Tag]*Locale),
	}

	c.locales[tag] = New(tag, opts...)

	return c
}

// Default returns the default locale.
func (c *Context) Default() *Locale {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.locales[c.def]
}

// Locale returns the locale tagged tag, creating an empty one if needed.
func (c *Context) Locale(tag language.Tag) *Locale {
	c.mu.RLock()
	l, ok := c.locales[tag]
	c.mu.RUnlock()

	if ok {
		return l
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if l, ok := c.locales[tag]; ok {
		return l
	}

	l = New(tag, c.opts...)
	c.locales[tag] = l

	return l
}

// Lookup returns the locale tagged tag if it exists.
func (c *Context) Lookup(tag language.Tag) (*Locale, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	l, ok := c.locales[tag]

	return l, ok
}

// Tags returns the tags of every locale, the default first and the rest in
// lexical order.
func (c *Context) Tags() []language.Tag {
	c.mu.RLock()
	defer c.mu.RUnlock()

	tags := make([]language.Tag, 0, len(c.locales))

	for tag := range c.locales {
		if tag != c.def {
			tags = append(tags, tag)
		}
	}

	slices.SortFunc(tags, func(a, b language.Tag) int {
		return strings.Compare(a.String(), b.String())
	})

	return append([]language.Tag{c.def}, tags...)
}

// Negotiate returns the available locale that best matches the user
// preferences prefs, in order of preference. Each preference is a BCP 47 tag
// or an Accept-Language list; invalid preferences are ignored. Without an
// acceptable match the default locale is returned.
func (c *Context) Negotiate(prefs ...string) *Locale {
	var desired []language.Tag

	for _, pref := range prefs {
		tags, _, err := language.ParseAcceptLanguage(pref)
		if err != nil {
			continue
		}

		desired = append(desired, tags...)
	}

	supported := c.Tags()
	if len(desired) == 0 {
		return c.Default()
	}

	_, index, conf := language.NewMatcher(supported).Match(desired...)
	if conf == language.No || index < 0 || index >= len(supported) {
		return c.Default()
	}

	l, ok := c.Lookup(supported[index])
	if !ok {
		return c.Default()
	}

	return l
}
