// Command gen-commands emits a pseudo-random, replayable command script
// for exercising the matching engine. The same seed always produces the
// same script.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/MelihEfeSonmez/GigMatch-Simulation-Engine/internal/domain/catalog"
)

// Default generation parameters.
const (
	defaultCustomers   = 20
	defaultFreelancers = 50
	defaultActions     = 500
	defaultSeed        = 42

	maxPrice = 400
	minPrice = 20

	monthEvery = 60 // one simulate_month roughly every N actions
)

func main() {
	var (
		customers   = flag.Int("customers", defaultCustomers, "number of customers to register")
		freelancers = flag.Int("freelancers", defaultFreelancers, "number of freelancers to register")
		actions     = flag.Int("actions", defaultActions, "number of lifecycle actions to generate")
		seed        = flag.Int64("seed", defaultSeed, "random seed (same seed, same script)")
		outputFile  = flag.String("output", "", "output file (defaults to stdout)")
	)
	flag.Parse()

	out := os.Stdout
	if *outputFile != "" {
		f, err := os.Create(*outputFile)
		if err != nil {
			os.Stderr.WriteString("create output: " + err.Error() + "\n")
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}

	w := bufio.NewWriter(out)
	defer w.Flush()

	rng := rand.New(rand.NewSource(*seed)) //nolint:gosec // deterministic scripts are the point
	generate(w, rng, *customers, *freelancers, *actions)
}

// generate writes registrations first, then a randomized action mix.
func generate(w *bufio.Writer, rng *rand.Rand, customers, freelancers, actions int) {
	categories := catalog.Categories()

	customerIDs := make([]string, customers)
	for i := range customerIDs {
		customerIDs[i] = "cust-" + shortID(rng)
		fmt.Fprintf(w, "register_customer %s\n", customerIDs[i])
	}

	freelancerIDs := make([]string, freelancers)
	for i := range freelancerIDs {
		freelancerIDs[i] = "free-" + shortID(rng)
		cat := categories[rng.Intn(len(categories))]
		price := minPrice + rng.Intn(maxPrice-minPrice)
		fmt.Fprintf(w, "register_freelancer %s %s %d %d %d %d %d %d\n",
			freelancerIDs[i], cat, price,
			rng.Intn(101), rng.Intn(101), rng.Intn(101), rng.Intn(101), rng.Intn(101))
	}

	for i := 0; i < actions; i++ {
		cust := customerIDs[rng.Intn(len(customerIDs))]
		free := freelancerIDs[rng.Intn(len(freelancerIDs))]
		cat := categories[rng.Intn(len(categories))]

		switch rng.Intn(10) {
		case 0, 1, 2:
			fmt.Fprintf(w, "request_job %s %s %d\n", cust, cat, 1+rng.Intn(5))
		case 3, 4:
			fmt.Fprintf(w, "complete_and_rate %s %d\n", free, rng.Intn(6))
		case 5:
			fmt.Fprintf(w, "cancel_by_freelancer %s\n", free)
		case 6:
			fmt.Fprintf(w, "cancel_by_customer %s %s\n", cust, free)
		case 7:
			fmt.Fprintf(w, "employ_freelancer %s %s\n", cust, free)
		case 8:
			fmt.Fprintf(w, "change_service %s %s %d\n", free, cat, minPrice+rng.Intn(maxPrice-minPrice))
		default:
			if rng.Intn(2) == 0 {
				fmt.Fprintf(w, "query_freelancer %s\n", free)
			} else {
				fmt.Fprintf(w, "query_customer %s\n", cust)
			}
		}

		if (i+1)%monthEvery == 0 {
			fmt.Fprintln(w, "simulate_month")
		}
	}
}

// shortID derives a compact, seed-independent unique suffix.
func shortID(rng *rand.Rand) string {
	// uuid.NewRandomFromReader keeps the script reproducible for a seed.
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return fmt.Sprintf("%08x", rng.Uint32())
	}
	return strings.SplitN(id.String(), "-", 2)[0]
}
