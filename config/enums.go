package config

//go:generate go tool go-enum --marshal --names --values

// Requested output document type.
// ENUM(odt, pdf)
type OutputFmt int

// Ext returns file name extension for output format.
func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtOdt:
		return ".odt"
	case OutputFmtPdf:
		return ".pdf"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// MimeType returns media type of produced document.
func (o OutputFmt) MimeType() string {
	switch o {
	case OutputFmtOdt:
		return "application/vnd.oasis.opendocument.text"
	case OutputFmtPdf:
		return "application/pdf"
	default:
		panic("unsupported format requested")
	}
}

// Language model service assistant talks to.
// ENUM(openrouter, anthropic)
type Provider int
