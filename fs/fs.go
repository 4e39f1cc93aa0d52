package appfs

import "embed"

// FS holds the database migrations, the e-mail and document templates, and the school images.
//go:embed migrations templates assets templates/email/_base.gohtml templates/email/_base.txt
var FS embed.FS
