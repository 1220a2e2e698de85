// Package watch reports changes to l20n resource files.
//
// A [Watcher] watches named files and directories with fsnotify. Events are
// debounced so that an editor saving several files, or one file in several
// writes, results in a single reload:
//
//	w, err := watch.New([]string{"locales"}, watch.WithInterval(200*time.Millisecond))
//	if err != nil {
//		return err
//	}
//	defer w.Stop()
//
//	return w.Watch(ctx, func(ctx context.Context, changed []string) error {
//		return reload(ctx, changed)
//	})
package watch
