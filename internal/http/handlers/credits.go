package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"server/internal/i18n"
	"server/internal/middleware"
)

// CreditPackage is one purchasable top-up bundle. The demo grants the
// credits directly; a production build would hand the package to a payment
// processor first.
type CreditPackage struct {
	ID      string `json:"id"`
	Credits int    `json:"credits"`
	Price   string `json:"price"`
	Popular bool   `json:"popular"`
}

var creditPackages = []CreditPackage{
	{ID: "p1", Credits: 100, Price: "$1.99"},
	{ID: "p2", Credits: 500, Price: "$7.99", Popular: true},
	{ID: "p3", Credits: 1500, Price: "$19.99"},
}

type topupRequest struct {
	PackageID string `json:"package_id"`
}

// Balance returns the signed-in user's credit balance.
func (a *App) Balance(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	a.json(w, http.StatusOK, map[string]int{"balance": a.Ledger.Balance(user.Email)})
}

// Packages lists the fixed top-up bundles.
func (a *App) Packages(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"packages": creditPackages})
}

// Topup grants the credits of the chosen package.
func (a *App) Topup(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	var req topupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var pkg *CreditPackage
	for i := range creditPackages {
		if creditPackages[i].ID == req.PackageID {
			pkg = &creditPackages[i]
			break
		}
	}
	if pkg == nil {
		a.error(w, http.StatusBadRequest, "unknown_package", "unknown package id")
		return
	}

	if !a.Ledger.Add(user.Email, pkg.Credits) {
		a.error(w, http.StatusInternalServerError, "internal", "failed to add credits")
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	a.json(w, http.StatusOK, map[string]any{
		"balance": a.Ledger.Balance(user.Email),
		"message": fmt.Sprintf("+%d %s", pkg.Credits, i18n.T(locale, i18n.MsgCreditsAdded)),
	})
}
