package entity

import "testing"

func TestReqNextStatus(t *testing.T) {
	cases := []struct {
		current string
		action  string
		want    string
		ok      bool
	}{
		{ReqStatusPending, ReqActionApprove, ReqStatusApproved, true},
		{ReqStatusPending, ReqActionReject, ReqStatusRejected, true},
		{ReqStatusPending, ReqActionCancel, ReqStatusCanceled, true},
		{ReqStatusApproved, ReqActionDeliver, ReqStatusDelivered, true},
		// Off-table actions are rejected
		{ReqStatusPending, ReqActionDeliver, "", false},
		{ReqStatusApproved, ReqActionCancel, "", false},
		{ReqStatusApproved, ReqActionApprove, "", false},
		{ReqStatusDelivered, ReqActionDeliver, "", false},
		{ReqStatusRejected, ReqActionApprove, "", false},
		{ReqStatusCanceled, ReqActionApprove, "", false},
	}
	for _, c := range cases {
		got, ok := ReqNextStatus(c.current, c.action)
		if ok != c.ok || got != c.want {
			t.Errorf("ReqNextStatus(%s, %s) = (%s, %v), want (%s, %v)",
				c.current, c.action, got, ok, c.want, c.ok)
		}
	}
}

func TestPONextStatus(t *testing.T) {
	cases := []struct {
		current string
		action  string
		want    string
		ok      bool
	}{
		{POStatusPending, POActionApprove, POStatusApproved, true},
		{POStatusPending, POActionReject, POStatusRejected, true},
		{POStatusApproved, POActionReceive, POStatusReceived, true},
		{POStatusPending, POActionReceive, "", false},
		{POStatusApproved, POActionApprove, "", false},
		{POStatusReceived, POActionReceive, "", false},
		{POStatusRejected, POActionApprove, "", false},
	}
	for _, c := range cases {
		got, ok := PONextStatus(c.current, c.action)
		if ok != c.ok || got != c.want {
			t.Errorf("PONextStatus(%s, %s) = (%s, %v), want (%s, %v)",
				c.current, c.action, got, ok, c.want, c.ok)
		}
	}
}

func TestIncidentCanTransition(t *testing.T) {
	allowed := [][2]string{
		{IncidentStatusOpen, IncidentStatusInvestigating},
		{IncidentStatusOpen, IncidentStatusResolved},
		{IncidentStatusInvestigating, IncidentStatusResolved},
		{IncidentStatusResolved, IncidentStatusClosed},
	}
	for _, p := range allowed {
		if !IncidentCanTransition(p[0], p[1]) {
			t.Errorf("Expected %s -> %s to be allowed", p[0], p[1])
		}
	}

	denied := [][2]string{
		{IncidentStatusOpen, IncidentStatusClosed},
		{IncidentStatusInvestigating, IncidentStatusOpen},
		{IncidentStatusResolved, IncidentStatusOpen},
		{IncidentStatusClosed, IncidentStatusResolved},
		{IncidentStatusClosed, IncidentStatusOpen},
	}
	for _, p := range denied {
		if IncidentCanTransition(p[0], p[1]) {
			t.Errorf("Expected %s -> %s to be denied", p[0], p[1])
		}
	}
}
