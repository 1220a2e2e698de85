// Package locale groups compiled l20n resources by language.
//
// A [Locale] holds the entries of one language and localizes them into Go
// values: every entry is resolved against caller data and the resulting map
// is decoded into a struct or map. Entries may refer to the locale's own tag
// through the @locale global.
//
//	l := locale.New(language.English)
//	if err := l.AddFile(ctx, "en.l20n"); err != nil {
//		return err
//	}
//
//	var t struct{ Hi, Factorial string }
//	err := l.LocalizeData(ctx, map[string]any{"number": 3}, &t)
//
// A [Context] is a set of locales with a default. [Context.Negotiate] picks
// the locale that best matches a list of user preferences.
package locale
