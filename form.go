package requestbridge

import (
	"bytes"
	"mime/multipart"

	"github.com/pkg/errors"
)

// Form is a multipart/form-data payload: plain fields plus file parts.
// Assign one to RequestConfig.Form to upload files; the encoded form owns
// its Content-Type (the multipart boundary lives there), so Send never adds
// one of its own.
type Form struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	contents []byte
}

func NewForm() *Form {
	return &Form{}
}

// AddField appends a plain form field.
func (f *Form) AddField(name, value string) *Form {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile appends a file part under the given field name.
func (f *Form) AddFile(field, filename string, contents []byte) *Form {
	f.files = append(f.files, formFile{field: field, filename: filename, contents: contents})
	return f
}

// Encode writes the multipart body and returns it together with the
// content type carrying the generated boundary.
func (f *Form) Encode() ([]byte, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", errors.Wrapf(err, "writing form field %q", field.name)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", errors.Wrapf(err, "creating form file %q", file.field)
		}
		if _, err := part.Write(file.contents); err != nil {
			return nil, "", errors.Wrapf(err, "writing form file %q", file.field)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "closing multipart writer")
	}
	return body.Bytes(), w.FormDataContentType(), nil
}
