package rslimiter

import "github.com/shirou/gopsutil/v3/mem"

// ResourceUsage is a host memory reading
type ResourceUsage struct {
	SystemMemUsedMB      int64   // System memory used (MB)
	SystemMemTotalMB     int64   // Total system memory (MB)
	SystemMemUsedPercent float64 // System memory used percentage
}

// GetResourceUsage reads host memory statistics
func GetResourceUsage() (ResourceUsage, error) {
	usage := ResourceUsage{}

	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return usage, err
	}
	usage.SystemMemUsedMB = int64(vmStat.Used / 1024 / 1024)
	usage.SystemMemTotalMB = int64(vmStat.Total / 1024 / 1024)
	usage.SystemMemUsedPercent = vmStat.UsedPercent
	return usage, nil
}

// systemMemoryFraction returns used system memory as a fraction in [0, 1]
func systemMemoryFraction() (float64, error) {
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return 0, err
	}
	return vmStat.UsedPercent / 100, nil
}
