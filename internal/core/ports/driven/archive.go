package driven

import (
	"context"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

// Archive is the cloud folder payslips are stored in.
type Archive interface {
	// List returns the payslips already archived. File names that do not
	// follow YYYY-MM-DD-Company.pdf are skipped.
	List(ctx context.Context) ([]domain.ArchivedDocument, error)

	// Upload stores the local file in the archive folder and returns
	// browsable links to the file and the folder.
	Upload(ctx context.Context, localPath string) (domain.UploadResult, error)

	// ResolveContainer looks up the folder with the given name.
	// Exactly one folder must match.
	ResolveContainer(ctx context.Context, name string) (domain.FolderInfo, error)
}
