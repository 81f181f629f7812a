// Package param provides observable objects with named, constrained fields.
//
// Parameterized is the capability querysync needs from any object it keeps
// in sync with the URL: enumerate fields, read them, set several at once,
// and watch them for changes. Object is a ready-made implementation backed
// by reactive signals:
//
//	widget := param.New("Filters",
//	    param.String("color", "blue"),
//	    param.Int("page", 1),
//	    param.Strings("tags"),
//	)
//
//	h, _ := widget.Watch([]string{"color"}, func(events []param.Event) {
//	    for _, e := range events {
//	        fmt.Println(e.Field, e.Old, "->", e.New)
//	    }
//	})
//	defer widget.Unwatch(h)
//
//	_ = widget.Set("color", "red")    // color blue -> red
//	_ = widget.Set("page", "3")       // strings are coerced to the field kind
//
// Writes are validated before anything is applied, so a failed SetMany
// leaves every field untouched.
package param
