package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/aanand-mishra/lingo-admin/internal/types"
)

// Multipart file field names the backend expects per entity.
const (
	languageImageField = "imageLink"
	conceptImageField  = "image"
)

// ListLanguages fetches one page of languages.
func (c *Client) ListLanguages(ctx context.Context, page, limit int) (types.Page[types.Language], error) {
	raw, err := c.list(ctx, "/language/all-language", page, limit)
	if err != nil {
		return types.Page[types.Language]{}, err
	}
	return decodePage[types.Language](raw, "languages")
}

func languageFields(f types.LanguageForm) map[string]string {
	return map[string]string{
		"name":        f.Name,
		"code":        f.Code,
		"description": f.Description,
		"about":       f.About,
	}
}

func (c *Client) CreateLanguage(ctx context.Context, f types.LanguageForm, image *types.Upload) (types.Language, error) {
	var out types.Language
	_, err := c.call(ctx, http.MethodPost, "/language/create-language",
		multipart(languageFields(f), languageImageField, image), &out)
	return out, err
}

func (c *Client) UpdateLanguage(ctx context.Context, id string, f types.LanguageForm, image *types.Upload) (types.Language, error) {
	var out types.Language
	_, err := c.call(ctx, http.MethodPatch, "/language/update-language/"+url.PathEscape(id),
		multipart(languageFields(f), languageImageField, image), &out)
	return out, err
}

func (c *Client) DeleteLanguage(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/language/"+url.PathEscape(id), nil, nil)
	return err
}

// ListConcepts fetches one page of lessons.
func (c *Client) ListConcepts(ctx context.Context, page, limit int) (types.Page[types.Concept], error) {
	raw, err := c.list(ctx, "/concept", page, limit)
	if err != nil {
		return types.Page[types.Concept]{}, err
	}
	return decodePage[types.Concept](raw, "concepts")
}

func conceptFields(f types.ConceptForm) map[string]string {
	return map[string]string{
		"name":        f.Name,
		"description": f.Description,
	}
}

func (c *Client) CreateConcept(ctx context.Context, f types.ConceptForm, image *types.Upload) (types.Concept, error) {
	var out types.Concept
	_, err := c.call(ctx, http.MethodPost, "/concept",
		multipart(conceptFields(f), conceptImageField, image), &out)
	return out, err
}

func (c *Client) UpdateConcept(ctx context.Context, id string, f types.ConceptForm, image *types.Upload) (types.Concept, error) {
	var out types.Concept
	_, err := c.call(ctx, http.MethodPatch, "/concept/"+url.PathEscape(id),
		multipart(conceptFields(f), conceptImageField, image), &out)
	return out, err
}

func (c *Client) DeleteConcept(ctx context.Context, id string) error {
	_, err := c.call(ctx, http.MethodDelete, "/concept/"+url.PathEscape(id), nil, nil)
	return err
}
