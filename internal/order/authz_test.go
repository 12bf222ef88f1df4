package order

import (
	"testing"

	"github.com/AutoMercado/AutoMercado/internal/common/auth"
	"github.com/AutoMercado/AutoMercado/internal/user"
	"github.com/stretchr/testify/assert"
)

func TestTransitionAuthorization(t *testing.T) {
	o := &Order{BuyerID: "buyer-1", SellerID: "seller-1"}

	buyer := &auth.Actor{ID: "buyer-1", Role: user.RoleClient}
	seller := &auth.Actor{ID: "seller-1", Role: user.RoleVendor}
	stranger := &auth.Actor{ID: "stranger", Role: user.RoleClient}
	root := &auth.Actor{ID: "admin-1", Role: user.RoleAdmin}

	tests := []struct {
		name  string
		check func(*auth.Actor, *Order) bool
		allow map[*auth.Actor]bool
	}{
		{"approve", canApprove, map[*auth.Actor]bool{buyer: false, seller: true, stranger: false, root: true}},
		{"reject", canReject, map[*auth.Actor]bool{buyer: false, seller: true, stranger: false, root: true}},
		{"complete", canComplete, map[*auth.Actor]bool{buyer: false, seller: true, stranger: false, root: true}},
		{"cancel", canCancel, map[*auth.Actor]bool{buyer: true, seller: false, stranger: false, root: true}},
		{"read", canRead, map[*auth.Actor]bool{buyer: true, seller: true, stranger: false, root: true}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for actor, want := range test.allow {
				assert.Equal(t, want, test.check(actor, o), "actor %s", actor.ID)
			}
		})
	}
}
