package workflow

import (
	"reflect"
	"testing"

	"github.com/ledgerline/docflow/internal/domain/entity"
)

func receiptConfigs() []*entity.StatusConfig {
	return []*entity.StatusConfig{
		{StatusCode: "draft", SortOrder: 10, IsInitial: true, AllowsEditing: true, AllowsDeletion: true, IsActive: true},
		{StatusCode: "received", SortOrder: 20, CreatesInventoryMovements: true, IsActive: true},
		{StatusCode: "completed", SortOrder: 30, IsFinal: true, SemanticType: entity.SemanticCompletion, IsActive: true},
		{StatusCode: "cancelled", SortOrder: 40, IsCancellation: true, ReversesInventoryMovements: true, IsActive: true},
	}
}

func TestNextStatuses_LinearFallback(t *testing.T) {
	configs := receiptConfigs()

	tests := []struct {
		name    string
		current string
		want    []string
	}{
		{"from initial", "draft", []string{"received", "cancelled"}},
		{"from middle", "received", []string{"completed", "cancelled"}},
		{"from final", "completed", []string{}},
		{"from cancellation", "cancelled", []string{}},
		{"unknown current still offers cancellation", "bogus", []string{"cancelled"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStatuses(configs, nil, tt.current)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NextStatuses(%q) = %v, want %v", tt.current, got, tt.want)
			}
		})
	}
}

func TestNextStatuses_InitialNeverOffered(t *testing.T) {
	configs := receiptConfigs()
	for _, from := range []string{"draft", "received", "completed", "cancelled"} {
		for _, to := range NextStatuses(configs, nil, from) {
			if to == "draft" {
				t.Errorf("initial status offered as target from %q", from)
			}
		}
	}
}

func TestNextStatuses_SkipsInactiveConfigs(t *testing.T) {
	configs := receiptConfigs()
	configs[1].IsActive = false // received disabled

	got := NextStatuses(configs, nil, "draft")
	want := []string{"completed", "cancelled"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NextStatuses with inactive middle = %v, want %v", got, want)
	}
}

func TestNextStatuses_FinalOnlyFromDirectPredecessor(t *testing.T) {
	configs := []*entity.StatusConfig{
		{StatusCode: "draft", SortOrder: 1, IsInitial: true, IsActive: true},
		{StatusCode: "submitted", SortOrder: 2, SemanticType: entity.SemanticApproval, IsActive: true},
		{StatusCode: "approved", SortOrder: 3, SemanticType: entity.SemanticApproval, IsActive: true},
		{StatusCode: "closed", SortOrder: 4, IsFinal: true, IsActive: true},
	}

	got := NextStatuses(configs, nil, "draft")
	want := []string{"submitted", "approved"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NextStatuses(draft) = %v, want %v", got, want)
	}

	got = NextStatuses(configs, nil, "approved")
	want = []string{"closed"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NextStatuses(approved) = %v, want %v", got, want)
	}
}

func TestNextStatuses_ExplicitEdgesOverrideOrder(t *testing.T) {
	configs := []*entity.StatusConfig{
		{StatusCode: "draft", SortOrder: 1, IsInitial: true, IsActive: true},
		{StatusCode: "submitted", SortOrder: 2, IsActive: true},
		{StatusCode: "rejected", SortOrder: 3, IsActive: true},
		{StatusCode: "approved", SortOrder: 4, IsFinal: true, IsActive: true},
		{StatusCode: "cancelled", SortOrder: 5, IsCancellation: true, IsActive: true},
	}
	edges := []*entity.TransitionEdge{
		{FromStatus: "rejected", ToStatus: "submitted"}, // loop back, not representable linearly
	}

	got := NextStatuses(configs, edges, "rejected")
	want := []string{"submitted", "cancelled"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NextStatuses(rejected) with edges = %v, want %v", got, want)
	}

	// Statuses without edges still use the linear fallback.
	got = NextStatuses(configs, edges, "draft")
	want = []string{"submitted", "rejected", "cancelled"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NextStatuses(draft) with edges elsewhere = %v, want %v", got, want)
	}
}

func TestNextStatuses_EdgeToInitialFiltered(t *testing.T) {
	configs := []*entity.StatusConfig{
		{StatusCode: "draft", SortOrder: 1, IsInitial: true, IsActive: true},
		{StatusCode: "submitted", SortOrder: 2, IsActive: true},
	}
	edges := []*entity.TransitionEdge{
		{FromStatus: "submitted", ToStatus: "draft"},
	}

	got := NextStatuses(configs, edges, "submitted")
	if len(got) != 0 {
		t.Errorf("edge back to initial should be filtered, got %v", got)
	}
}

func TestInitialStatus(t *testing.T) {
	if got := InitialStatus(receiptConfigs()); got != "draft" {
		t.Errorf("InitialStatus() = %q, want %q", got, "draft")
	}
	if got := InitialStatus(nil); got != "" {
		t.Errorf("InitialStatus(nil) = %q, want empty", got)
	}

	noInitial := []*entity.StatusConfig{
		{StatusCode: "open", SortOrder: 1, IsActive: true},
	}
	if got := InitialStatus(noInitial); got != "" {
		t.Errorf("InitialStatus without initial flag = %q, want empty", got)
	}
}
