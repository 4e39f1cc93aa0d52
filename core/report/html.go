package report

import (
	"bytes"
	"encoding/base64"
	"html/template"
	"sync"

	"github.com/pkg/errors"

	appfs "github.com/earmahsakyi/School-Management-System-sub002/fs"
)

var (
	docTmpl     *template.Template
	docTmplErr  error
	docTmplInit sync.Once

	docTmplPath = "templates/report/document.gohtml"
)

func parseDocTemplate() {
	docTmpl, docTmplErr = template.New("document.gohtml").
		Funcs(template.FuncMap{"dataURI": dataURI}).
		ParseFS(appfs.FS, docTmplPath)
}

func dataURI(img Image) template.URL {
	return template.URL("data:" + img.ContentType + ";base64," + base64.StdEncoding.EncodeToString(img.Data))
}

// RenderHTML generates the markup handed to the PDF renderer. Each document starts on a new page.
func RenderHTML(docs ...Document) ([]byte, error) {
	docTmplInit.Do(parseDocTemplate)
	if docTmplErr != nil {
		return nil, errors.Wrap(docTmplErr, "parsing document template")
	}

	var buf bytes.Buffer
	if err := docTmpl.Execute(&buf, docs); err != nil {
		return nil, errors.Wrap(err, "executing document template")
	}
	return buf.Bytes(), nil
}
