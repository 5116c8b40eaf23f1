package model

import (
	"math"
	"testing"
)

func TestOrderStatus_TransitionTable(t *testing.T) {
	all := []OrderStatus{
		OrderStatusPending, OrderStatusProcessing, OrderStatusReported,
		OrderStatusCompleted, OrderStatusCancelled,
	}
	legal := map[[2]OrderStatus]bool{
		{OrderStatusPending, OrderStatusProcessing}:   true,
		{OrderStatusProcessing, OrderStatusCompleted}: true,
		{OrderStatusProcessing, OrderStatusReported}:  true,
	}

	for _, from := range all {
		for _, to := range all {
			want := legal[[2]OrderStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s → %s: 期望 %v, 实际 %v", from, to, want, got)
			}
		}
	}
}

func TestOrderStatus_Terminal(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusReported, OrderStatusCompleted, OrderStatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s 应为终态", s)
		}
	}
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing} {
		if s.Terminal() {
			t.Errorf("%s 不应为终态", s)
		}
	}
}

func TestOrderStatus_Valid(t *testing.T) {
	if OrderStatus(5).Valid() || OrderStatus(-1).Valid() {
		t.Error("越界状态不应有效")
	}
	if OrderStatus(9).String() != "UNKNOWN" {
		t.Error("未知状态应输出 UNKNOWN")
	}
}

func TestKnowledgeArticle_RecommendScore(t *testing.T) {
	a := &KnowledgeArticle{ViewCount: 100, LikeCount: 10, FavoriteCount: 20}
	if got := a.RecommendScore(); math.Abs(got-49) > 1e-9 {
		t.Errorf("期望 49, 实际 %v", got)
	}
}
