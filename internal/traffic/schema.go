package traffic

// Raw input column names. The schema follows the regional activity-based
// model link export: identity fields, one lane-count column per period, and
// six flow columns per period (three auto classes, three truck classes).
const (
	ColID        = "ID"
	ColLength    = "LENGTH"
	ColDirection = "DIRECT"
	ColFacility  = "TYPE"
)

// laneColumns is indexed by Period.
var laneColumns = [numPeriods]string{
	"AB_AMLANES",
	"AB_PMLANES",
	"AB_MDLANES",
	"AB_EVELANE",
	"AB_NTLANES",
}

// flowColumns is indexed by Period. Auto order: drive-alone, shared-ride 2,
// shared-ride 3+. Truck order: light, medium, heavy heavy-duty.
var flowColumns = [numPeriods]struct {
	Auto  [3]string
	Truck [3]string
}{
	AM:  {Auto: [3]string{"AB_FLOW_DA", "AB_FLOW_SR", "AB_FLOW_S1"}, Truck: [3]string{"AB_FLOW_LI", "AB_FLOW_ME", "AB_FLOW_HE"}},
	PM:  {Auto: [3]string{"AB_FLOW_D1", "AB_FLOW_S4", "AB_FLOW_S5"}, Truck: [3]string{"AB_FLOW_L1", "AB_FLOW_M1", "AB_FLOW_H1"}},
	MD:  {Auto: [3]string{"AB_FLOW_D2", "AB_FLOW_S8", "AB_FLOW_S9"}, Truck: [3]string{"AB_FLOW_L2", "AB_FLOW_M2", "AB_FLOW_H2"}},
	EVE: {Auto: [3]string{"AB_FLOW_D3", "AB_FLOW_12", "AB_FLOW_13"}, Truck: [3]string{"AB_FLOW_L3", "AB_FLOW_M3", "AB_FLOW_H3"}},
	NT:  {Auto: [3]string{"AB_FLOW_D4", "AB_FLOW_16", "AB_FLOW_17"}, Truck: [3]string{"AB_FLOW_L4", "AB_FLOW_M4", "AB_FLOW_H4"}},
}

// LaneColumn returns the raw lane-count column name for a period.
func LaneColumn(p Period) string { return laneColumns[p] }

// AutoFlowColumns returns the three raw auto-class flow column names for a
// period.
func AutoFlowColumns(p Period) [3]string { return flowColumns[p].Auto }

// TruckFlowColumns returns the three raw truck-class flow column names for
// a period, in light/medium/heavy order.
func TruckFlowColumns(p Period) [3]string { return flowColumns[p].Truck }

// FlowColumnsFor returns all six raw flow column names for a period, auto
// classes first.
func FlowColumnsFor(p Period) []string {
	cols := make([]string, 0, 6)
	for _, c := range flowColumns[p].Auto {
		cols = append(cols, c)
	}
	for _, c := range flowColumns[p].Truck {
		cols = append(cols, c)
	}
	return cols
}

// RequiredColumns returns the identity columns every input file must carry.
func RequiredColumns() []string {
	return []string{ColDirection, ColFacility, ColID, ColLength}
}
