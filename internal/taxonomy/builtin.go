package taxonomy

// builtin is the facility assessment taxonomy shipped with assess.
var builtin = &Taxonomy{Domains: []Domain{
	dom("Facility Architecture",
		sub("Room Layout",
			comp("IT Room", "Room Dimension (LxWxH)"),
			comp("UPS Room", "Room Dimension (LxWxH)"),
			comp("Battery Room", "Room Dimension (LxWxH)"),
			comp("Electrical Room", "Room Dimension (LxWxH)"),
			comp("Telecom Room", "Room Dimension (LxWxH)"),
		),
		sub("Raised Floor",
			comp("Floor System", "Height of Raised Floor"),
			comp("Grounding Connected", "Is Grounding Connected? (Yes/No)"),
			comp("Perforated Tile", "Perforated Tile Present? (Yes/No)", "Quantity (if Yes)"),
			comp("Cable Management", "Is Cable Management Present? (Yes/No)", "Separated Path? (Yes/No)"),
		),
	),
	dom("Power Infrastructure",
		sub("Utility Feed A & B",
			comp("General", "How many sources feed?", "Cable Size"),
		),
		sub("Automatic Transfer Switch",
			comp("ATS", "Describe ATS Components", "Quantity of ATS"),
		),
		sub("Main Distribution Board",
			comp("MDB", "Describe MDB Components", "Quantity of MDB"),
		),
		sub("Generator Sets",
			comp("General", "Generator Model", "Generator Capacity", "Quantity of Generators"),
		),
		sub("Fuel System",
			comp("General", "How many Tanks?", "Fuel Type Used", "Separated Pipe System? (Yes/No)", "Tank Capacity"),
		),
		sub("Grounding & Bonding Grid",
			comp("General", "Is Grounding and Bonding Available? (Yes/No)"),
		),
	),
	dom("UPS & Battery Systems",
		sub("UPS & Battery",
			comp("General", "Number of UPS", "UPS Model", "Number of Batteries", "Battery Model"),
		),
	),
	dom("Cooling Infrastructure",
		sub("Indoor Unit",
			comp("General", "Cooling Type", "Cooling Unit Quantity", "Cooling Unit Capacity"),
		),
		sub("Outdoor Unit",
			comp("General", "Condenser Type", "Condenser Quantity", "Condenser Capacity"),
		),
	),
	dom("Fire & Life-Safety",
		sub("Fire Suppression",
			comp("General", "Fire Suppression Type"),
		),
		sub("Smoke Detectors",
			comp("General", "Number of Smoke Detectors", "Model Number"),
		),
		sub("Heat Detectors",
			comp("General", "Number of Heat Detectors", "Model Number"),
		),
		sub("Fire-alarm Control Panel",
			comp("General", "Number of Fire Panels", "Model Number"),
		),
		sub("Fire-suppression Cylinders",
			comp("FM-200", "Number of Cylinders", "Cylinder Capacity", "Cylinder Model Number"),
			comp("Novec", "Number of Cylinders", "Cylinder Capacity", "Cylinder Model Number"),
		),
		sub("Nozzles",
			comp("General", "Size of Nozzle", "Number of Nozzles"),
		),
		sub("Fire Doors",
			comp("General", "Number of Doors", "Size of Doors (WxH)"),
		),
		sub("Dampers",
			comp("General", "Number of Dampers", "Size of Dampers (WxH)"),
		),
		sub("Emergency Lighting",
			comp("General", "Number of Emergency Lights", "Lighting Capacity (Wattage)", "Size of Emergency Light (WxL)"),
		),
	),
	dom("Security & Access Control",
		sub("Readers",
			comp("General", "Number of Readers", "Model of Readers"),
		),
		sub("Exit Buttons",
			comp("General", "Number of Exit Buttons", "Model of Exit Buttons"),
		),
		sub("Access Control Panels",
			comp("General", "Number of Panels", "Model of Panels"),
		),
		sub("NVR/DVR",
			comp("General", "Number of NVR/DVRs", "Model of NVR/DVRs"),
		),
		sub("CCTV Cameras",
			comp("General", "Number of Cameras", "Model of Cameras"),
		),
	),
	dom("Environmental Monitoring / DCIM",
		sub("T/H Sensors",
			comp("General", "Number of Sensors", "Model of Sensors"),
		),
		sub("Leakage Sensors",
			comp("General", "Number of Sensors", "Model of Sensors"),
		),
		sub("EMS Appliances",
			comp("General", "Number of Appliances", "Model of Appliances"),
		),
		sub("Generic Sensors",
			comp("General", "Number of Sensors", "Model of Sensors"),
		),
		sub("Energy Meters",
			comp("General", "Number of Devices", "Model of Devices"),
		),
	),
}}

// Default returns the built-in taxonomy. The value is shared and must not
// be modified.
func Default() *Taxonomy {
	return builtin
}

func dom(name string, subs ...Subsystem) Domain {
	return Domain{Name: name, Subsystems: subs}
}

func sub(name string, comps ...Component) Subsystem {
	return Subsystem{Name: name, Components: comps}
}

func comp(name string, fields ...string) Component {
	return Component{Name: name, Fields: fields}
}
