package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/tmpim/sixheat"
)

var (
	samples  = flag.Int("n", 4096, "set the number of samples per heatmap")
	workers  = flag.Int("w", 8, "set the number of concurrent renderers")
	renders  = flag.Int("r", 100, "set the number of heatmaps per renderer")
	compress = flag.Bool("compress", true, "compress the rendered streams")
)

func main() {
	flag.Parse()

	data := make([]int, *samples)
	for i := range data {
		data[i] = rand.Intn(1000) - 500
	}

	opts := sixheat.DefaultOptions()
	opts.Compress = *compress

	wg := new(sync.WaitGroup)
	start := time.Now()

	var bytesMutex sync.Mutex
	total := 0

	for w := 0; w < *workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < *renders; i++ {
				result, err := sixheat.Render(data, opts)
				if err != nil {
					panic(err)
				}

				bytesMutex.Lock()
				total += len(result.Sixel)
				bytesMutex.Unlock()
			}
		}()
	}

	wg.Wait()
	fmt.Println("took:", time.Since(start), "bytes:", total)
}
