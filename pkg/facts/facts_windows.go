//go:build windows

package facts

import (
	"github.com/yusufpapurcu/wmi"
)

// WMI structures for querying system information. Only CIM metadata classes
// are touched here; the installer-database classes (Win32_Product) are off
// limits because enumerating them repairs every installed MSI as a side
// effect.
type win32OperatingSystem struct {
	Caption string `wmi:"Caption"`
	Version string `wmi:"Version"`
}

type win32ComputerSystem struct {
	Manufacturer string `wmi:"Manufacturer"`
	Model        string `wmi:"Model"`
}

func collectPlatform(f *SystemFacts) {
	var osRows []win32OperatingSystem
	if err := wmi.Query("SELECT Caption, Version FROM Win32_OperatingSystem", &osRows); err == nil && len(osRows) > 0 {
		f.OSName = osRows[0].Caption
		f.OSVersion = osRows[0].Version
	}

	var csRows []win32ComputerSystem
	if err := wmi.Query("SELECT Manufacturer, Model FROM Win32_ComputerSystem", &csRows); err == nil && len(csRows) > 0 {
		f.Manufacturer = csRows[0].Manufacturer
		f.Model = csRows[0].Model
	}
}
