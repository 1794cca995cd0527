// Package rugpull classifies dead coins and scores rug-pull and
// manipulation risk from price/volume series and holder distribution.
package rugpull

import "github.com/coinsight/coinsight/internal/indicators"

const flatlineThresholdPct = 0.1

// seriesStats are the shared measurements both detectors work from
type seriesStats struct {
	last          float64
	allTimeHigh   float64
	dropFromATH   float64 // percent, 0 when no ATH
	recentAvgVol  float64 // mean of last 5 volumes
	fullAvgVol    float64
	latestVol     float64
	maxVol        float64
	volumeTrend   float64 // relative delta, indicators.VolumeTrend
	flatlining    bool
	changes       []float64 // bar-to-bar percent changes
	lastChangePct float64
}

func computeStats(prices, volumes []float64) seriesStats {
	var s seriesStats
	if len(prices) == 0 {
		return s
	}

	s.last = prices[len(prices)-1]
	for _, p := range prices {
		if p > s.allTimeHigh {
			s.allTimeHigh = p
		}
	}
	if s.allTimeHigh > 0 {
		s.dropFromATH = (s.allTimeHigh - s.last) / s.allTimeHigh * 100
	}

	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			s.changes = append(s.changes, 0)
			continue
		}
		s.changes = append(s.changes, (prices[i]-prices[i-1])/prices[i-1]*100)
	}
	if len(s.changes) > 0 {
		s.lastChangePct = s.changes[len(s.changes)-1]
	}

	if len(s.changes) >= 5 {
		tail := s.changes[len(s.changes)-5:]
		flat := true
		for _, c := range tail {
			if c > flatlineThresholdPct || c < -flatlineThresholdPct {
				flat = false
				break
			}
		}
		s.flatlining = flat
	}

	if len(volumes) > 0 {
		var sum float64
		for _, v := range volumes {
			sum += v
			if v > s.maxVol {
				s.maxVol = v
			}
		}
		s.fullAvgVol = sum / float64(len(volumes))
		s.latestVol = volumes[len(volumes)-1]

		recent := volumes
		if len(volumes) > 5 {
			recent = volumes[len(volumes)-5:]
		}
		var recentSum float64
		for _, v := range recent {
			recentSum += v
		}
		s.recentAvgVol = recentSum / float64(len(recent))
		s.volumeTrend = indicators.VolumeTrend(volumes)
	}

	return s
}

// isDead reports whether trading has effectively died: a collapsed price
// with vanished volume, or a deep drop that has flatlined.
func (s seriesStats) isDead() bool {
	volumeGone := s.recentAvgVol == 0 ||
		(s.fullAvgVol > 0 && s.recentAvgVol <= s.fullAvgVol*0.05)

	if s.dropFromATH > 90 && volumeGone {
		return true
	}
	if s.dropFromATH > 70 && s.flatlining {
		return true
	}
	if s.recentAvgVol == 0 && s.flatlining {
		return true
	}
	return false
}
