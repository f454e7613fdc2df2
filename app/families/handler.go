package families

import (
	"net/http"

	"github.com/fwselect/firewall-selector/app/respond"
	"github.com/fwselect/firewall-selector/models"
)

type Response struct {
	Families []string `json:"families"`
}

type CatalogProvider interface {
	Catalog() (*models.Catalog, error)
}

type FamilyHandler struct {
	catalogs CatalogProvider
}

func NewFamilyHandler(p CatalogProvider) *FamilyHandler {
	return &FamilyHandler{catalogs: p}
}

func (h *FamilyHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	cat, err := h.catalogs.Catalog()
	if err != nil {
		respond.CatalogUnavailable(w)
		return
	}

	respond.JSON(w, http.StatusOK, Response{Families: cat.Families()})
}
