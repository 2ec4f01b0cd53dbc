package handler

import (
	"raspadinha/internal/models"

	"github.com/gin-gonic/gin"
)

func userView(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"role":       u.Role,
		"is_active":  u.IsActive,
		"created_at": u.CreatedAt,
	}
}

func transactionView(t *models.Transaction) gin.H {
	v := gin.H{
		"id":               t.ID,
		"reference":        t.Reference,
		"user_id":          t.UserID,
		"amount":           t.Amount,
		"kind":             t.Kind,
		"description":      t.Description,
		"previous_balance": t.PreviousBalance,
		"new_balance":      t.NewBalance,
		"status":           t.Status,
		"created_at":       t.CreatedAt,
	}
	if t.AdminID != nil {
		v["admin_id"] = *t.AdminID
	}
	if t.RelatedUserID != nil {
		v["related_user_id"] = *t.RelatedUserID
	}
	if t.RelatedTransactionID != nil {
		v["related_transaction_id"] = *t.RelatedTransactionID
	}
	return v
}

func transactionViews(ts []models.Transaction) []gin.H {
	out := make([]gin.H, 0, len(ts))
	for i := range ts {
		out = append(out, transactionView(&ts[i]))
	}
	return out
}
