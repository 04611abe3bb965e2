package services

import "github.com/custodia-labs/payslip-saver/internal/core/domain"

// ComputeMissing returns a work item for every provider document that has no
// archived counterpart. A provider document is archived when some archived
// document has the same date and a company equal to companyTag.
// Provider order is preserved.
func ComputeMissing(
	providerDocs []domain.ProviderDocument,
	archived []domain.ArchivedDocument,
	companyTag string,
) []domain.WorkItem {
	var missing []domain.WorkItem
	for _, doc := range providerDocs {
		if isArchived(doc, archived, companyTag) {
			continue
		}
		missing = append(missing, domain.WorkItem{Document: doc, CompanyTag: companyTag})
	}
	return missing
}

func isArchived(doc domain.ProviderDocument, archived []domain.ArchivedDocument, companyTag string) bool {
	for _, a := range archived {
		if a.Date == doc.Date && a.Company == companyTag {
			return true
		}
	}
	return false
}
