package sheet

// Option applies a configuration option to a load.
type Option func(*options)

type options struct {
	sheetName string
	charset   string
}

// WithSheetName reads the named sheet instead of the first one.
func WithSheetName(name string) Option {
	return func(o *options) {
		o.sheetName = name
	}
}

// WithCharset sets the text encoding used for legacy .xls files.
func WithCharset(charset string) Option {
	return func(o *options) {
		if charset != "" {
			o.charset = charset
		}
	}
}
