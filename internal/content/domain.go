package content

import "github.com/stayonscript/stayonscript/internal/docstore"

// Docstore collections owned by this module. Every document carries a
// company_id field scoping it to one tenant.
const (
	CollectionRebuttals    = "rebuttals"
	CollectionCategories   = "categories"
	CollectionDispositions = "dispositions"
	CollectionFAQs         = "faqs"
)

// Rebuttal is one objection/response pair in the training library.
type Rebuttal struct {
	ID         string `json:"id"`
	CompanyID  string `json:"company_id"`
	CategoryID string `json:"category_id,omitempty"`
	Objection  string `json:"objection"`
	Response   string `json:"response"`
}

// Category groups rebuttals.
type Category struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
}

// Disposition is one entry of the lead disposition guide.
type Disposition struct {
	ID          string `json:"id"`
	CompanyID   string `json:"company_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	NextStep    string `json:"next_step,omitempty"`
}

// FAQ is a question/answer entry.
type FAQ struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
}

func rebuttalFromDocument(doc docstore.Document) Rebuttal {
	return Rebuttal{
		ID:         doc.ID,
		CompanyID:  doc.String("company_id"),
		CategoryID: doc.String("category_id"),
		Objection:  doc.String("objection"),
		Response:   doc.String("response"),
	}
}

func categoryFromDocument(doc docstore.Document) Category {
	return Category{
		ID:        doc.ID,
		CompanyID: doc.String("company_id"),
		Name:      doc.String("name"),
	}
}

func dispositionFromDocument(doc docstore.Document) Disposition {
	return Disposition{
		ID:          doc.ID,
		CompanyID:   doc.String("company_id"),
		Name:        doc.String("name"),
		Description: doc.String("description"),
		NextStep:    doc.String("next_step"),
	}
}

func faqFromDocument(doc docstore.Document) FAQ {
	return FAQ{
		ID:        doc.ID,
		CompanyID: doc.String("company_id"),
		Question:  doc.String("question"),
		Answer:    doc.String("answer"),
	}
}
