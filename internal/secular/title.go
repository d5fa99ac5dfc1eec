package secular

import (
	"strconv"

	"github.com/san-kum/secular/internal/dynamo"
)

var (
	strAve  = [2]string{":SA", ":DA"}
	strPole = [2]string{"|quad", "| oct"}
	strGR   = [3]string{"", "|GR_{in}", "|GR_{in}|GR_{out}"}
	strGW   = [2]string{"", "|GW"}
	strSL   = [2]string{"", "|S_{in}L_{out}"}
	strLL   = [2]string{"", "|LL"}
	strS    = [4]string{"", "|S_{1}L_{in}", "|S_{1}L_{in}|S_{2}L_{in}", "|S_{1}L_{in}|S_{2}L_{in}|S_{3}L_{out}"}
)

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}

// LogTitle renders the one-line configuration summary written to the run
// log for each task, e.g. "12:DA| oct|GR_{in}|GW|S_{1}L_{in}".
func LogTitle(id int, ctrl Controller, spins int, opts Options) string {
	gr := b2i(ctrl.GR)
	if ctrl.GR && opts.GROuter && ctrl.Averaging == dynamo.Double {
		gr = 2
	}
	return strconv.Itoa(id) +
		strAve[ctrl.Averaging] +
		strPole[b2i(ctrl.Oct)] +
		strGR[gr] +
		strGW[b2i(ctrl.GW)] +
		strSL[b2i(ctrl.SL)] +
		strLL[b2i(ctrl.LL)] +
		strS[spins]
}
