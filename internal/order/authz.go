package order

import (
	"github.com/AutoMercado/AutoMercado/internal/common/auth"
	"github.com/AutoMercado/AutoMercado/internal/user"
)

// Who may drive which transition: the seller decides the order's fate
// (approve, reject, hand over), the buyer may only back out, and admins
// can do anything.

func canApprove(actor *auth.Actor, o *Order) bool {
	return actor.Role == user.RoleAdmin || actor.ID == o.SellerID
}

func canReject(actor *auth.Actor, o *Order) bool {
	return actor.Role == user.RoleAdmin || actor.ID == o.SellerID
}

func canComplete(actor *auth.Actor, o *Order) bool {
	return actor.Role == user.RoleAdmin || actor.ID == o.SellerID
}

func canCancel(actor *auth.Actor, o *Order) bool {
	return actor.Role == user.RoleAdmin || actor.ID == o.BuyerID
}

// canRead allows the parties to the order plus admins.
func canRead(actor *auth.Actor, o *Order) bool {
	return actor.Role == user.RoleAdmin || actor.ID == o.BuyerID || actor.ID == o.SellerID
}
