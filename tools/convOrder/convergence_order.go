package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/notargets/gopoisson/mesh"
	"github.com/notargets/gopoisson/poisson"
)

var (
	csvFile   string
	degree    = 1
	maxLevel  = 5
	lengthsXY = [2]float64{1, 1}
)

func main() {
	csvFilePtr := flag.String("csvFile", csvFile, "file to write the entries of the convergence study into")
	degreePtr := flag.Int("n", degree, "polynomial degree")
	levelPtr := flag.Int("levels", maxLevel, "finest refinement level, used as the reference solution")
	flag.Parse()
	csvFile, degree, maxLevel = *csvFilePtr, *degreePtr, *levelPtr
	if maxLevel < 2 {
		flag.Usage()
		os.Exit(1)
	}
	cs, err := RunStudy(fmt.Sprintf("Box %vx%v", lengthsXY[0], lengthsXY[1]), degree, maxLevel)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	fmt.Printf("Title = %s, Order = %d\n", cs.title, cs.order)
	for i := range cs.numPTS {
		fmt.Printf("%d, %v, %v, %5.2f\n", cs.numPTS[i], cs.errRMS[i], cs.errMAX[i], cs.Rate(i))
	}
	if len(csvFile) != 0 {
		if err = cs.WriteCSV(csvFile); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
}

// ConvergenceStudy holds self convergence errors: each level is compared to the finest level at the
// support points both share.
type ConvergenceStudy struct {
	title          string
	order          int
	numPTS         []int
	errRMS, errMAX []float64
}

func NewConvergenceStudy(title string, order int) *ConvergenceStudy {
	return &ConvergenceStudy{
		title: title,
		order: order,
	}
}

func (cs *ConvergenceStudy) Add(numPTS int, errRMS, errMAX float64) {
	cs.numPTS = append(cs.numPTS, numPTS)
	cs.errRMS = append(cs.errRMS, errRMS)
	cs.errMAX = append(cs.errMAX, errMAX)
}

// Rate is the observed order between entry i-1 and i, the mesh size halves between entries
func (cs *ConvergenceStudy) Rate(i int) float64 {
	if i == 0 || cs.errMAX[i] == 0 {
		return math.NaN()
	}
	return math.Log2(cs.errMAX[i-1] / cs.errMAX[i])
}

type pointKey [2]int64

func keyOf(p mesh.Point) pointKey {
	return pointKey{int64(math.Round(p[0] * 1e9)), int64(math.Round(p[1] * 1e9))}
}

// RunStudy solves -lap u = 1, u = 0 on the boundary at refinement levels 1 .. maxLevel
func RunStudy(title string, degree, maxLevel int) (cs *ConvergenceStudy, err error) {
	solve := func(level int) (res *poisson.Result, err error) {
		p := poisson.DefaultParameters()
		p.Lengths = lengthsXY[:]
		p.Refinement = level
		p.Degree = degree
		p.Boundary = poisson.BoundaryValue{Kind: poisson.ConstantBoundary, Value: 0}
		p.Preconditioner = poisson.JacobiPreconditioner
		p.Control.MaxIterations = 10000
		return poisson.Run(p)
	}
	var ref *poisson.Result
	if ref, err = solve(maxLevel); err != nil {
		return
	}
	fine := make(map[pointKey]float64, ref.NumDoFs())
	for dof, p := range ref.Locations() {
		fine[keyOf(p)] = ref.Solution[dof]
	}
	cs = NewConvergenceStudy(title, degree)
	for level := 1; level < maxLevel; level++ {
		var res *poisson.Result
		if res, err = solve(level); err != nil {
			return
		}
		var (
			sum, max float64
			count    int
		)
		for dof, p := range res.Locations() {
			u, ok := fine[keyOf(p)]
			if !ok {
				continue
			}
			e := math.Abs(res.Solution[dof] - u)
			sum += e * e
			max = math.Max(max, e)
			count++
		}
		if count == 0 {
			err = fmt.Errorf("level %d shares no support points with level %d", level, maxLevel)
			return
		}
		cs.Add(res.NumDoFs(), math.Sqrt(sum/float64(count)), max)
	}
	return
}

func (cs *ConvergenceStudy) WriteCSV(path string) (err error) {
	var f *os.File
	if f, err = os.Create(path); err != nil {
		return
	}
	w := csv.NewWriter(f)
	records := [][]string{{"title", "numPTS", "order", "errRMS", "errMAX", "rate"}}
	for i := range cs.numPTS {
		records = append(records, []string{
			cs.title,
			strconv.Itoa(cs.numPTS[i]),
			strconv.Itoa(cs.order),
			strconv.FormatFloat(cs.errRMS[i], 'g', -1, 64),
			strconv.FormatFloat(cs.errMAX[i], 'g', -1, 64),
			strconv.FormatFloat(cs.Rate(i), 'f', 3, 64),
		})
	}
	if err = w.WriteAll(records); err != nil {
		f.Close()
		return
	}
	return f.Close()
}
