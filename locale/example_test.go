package locale_test

import (
	"context"
	"fmt"

	"golang.org/x/text/language"

	"github.com/ardnew/l20n/locale"
)

func ExampleContext_Negotiate() {
	ctx := context.Background()
	c := locale.NewContext()

	_ = c.Locale(language.English).AddResource(ctx, `<hi 'Hello'>`)
	_ = c.Locale(language.French).AddResource(ctx, `<hi 'Bonjour'>`)

	l := c.Negotiate("fr-CH, en;q=0.5")

	var t struct{ Hi string }
	if err := l.Localize(ctx, &t); err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(l.Name(), t.Hi)
	// Output: fr Bonjour
}
