package region

import "time"

// startSweeper launches the background idle-expiry sweep when the template
// asks for one. The sweep only reclaims memory early; Get already treats
// idle-expired entries as absent.
func (r *Region) startSweeper() {
	if r.tmpl.SweepInterval <= 0 || r.tmpl.IdleExpiry <= 0 {
		return
	}

	ticker := time.NewTicker(r.tmpl.SweepInterval)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-r.stop:
				return
			}
		}
	}()
}
