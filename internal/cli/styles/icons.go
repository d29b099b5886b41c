package styles

// Nerd Font icons (requires a Nerd Font to display correctly)
const (
	IconGlobe   = "" // browser/web
	IconArrow   = "" // arrow right
	IconCheck   = "" // check
	IconX       = "" // x
	IconWarning = "" // warning
	IconInfo    = "" // info

	// Doctor
	IconDoctor  = "\uf0f1" // stethoscope
	IconPackage = "\uf187" // archive/package

	// Filesystem
	IconTrash  = "" // trash
	IconFolder = "" // folder
	IconConfig = "" // config
	IconImage  = "" // image file
	IconTab    = "" // table
)
