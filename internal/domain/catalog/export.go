package catalog

// ExportDocument is the id-free projection of a batch handed to external
// consumers.
type ExportDocument struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Thumbnail   string          `json:"thumbnail"`
	Subjects    []ExportSubject `json:"subjects"`
}

type ExportSubject struct {
	Name      string          `json:"name"`
	Thumbnail string          `json:"thumbnail"`
	Sections  []ExportSection `json:"sections"`
}

type ExportSection struct {
	Name     string          `json:"name"`
	Type     SectionType     `json:"type"`
	Contents []ExportContent `json:"contents"`
}

type ExportContent struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

type ExportOptions struct {
	// RewriteURL, when set, maps every stored content url (e.g. to a
	// playback url).
	RewriteURL func(raw string) string
}

func Export(b *Batch, opts ExportOptions) ExportDocument {
	doc := ExportDocument{Subjects: []ExportSubject{}}
	if b == nil {
		return doc
	}
	doc.Name = b.Name
	doc.Description = b.Description
	doc.Thumbnail = b.Thumbnail
	for _, s := range b.Subjects {
		if s == nil {
			continue
		}
		es := ExportSubject{Name: s.Name, Thumbnail: s.Thumbnail, Sections: []ExportSection{}}
		for _, sec := range s.Sections {
			if sec == nil {
				continue
			}
			ex := ExportSection{Name: sec.Name, Type: sec.Type, Contents: []ExportContent{}}
			for _, c := range sec.Contents {
				if c == nil {
					continue
				}
				url := c.URL
				if opts.RewriteURL != nil {
					url = opts.RewriteURL(url)
				}
				ex.Contents = append(ex.Contents, ExportContent{Title: c.Title, URL: url, Thumbnail: c.Thumbnail})
			}
			es.Sections = append(es.Sections, ex)
		}
		doc.Subjects = append(doc.Subjects, es)
	}
	return doc
}
