package surface

import "fmt"

// View ids shared by both backends. Trees built from the same configuration
// carry the same ids in the same order.
const (
	IDRoot            = "root"
	IDBackground      = "background"
	IDBackgroundShade = "background_shade"
	IDCover           = "cover_image"
	IDPanel           = "content_panel"
	IDTitle           = "title_rows"
	IDTimer           = "timer_text"
	IDFeatures        = "features"
	IDProducts        = "products"
	IDPurchase        = "purchase_button"
	IDFooter          = "footer"
	IDClose           = "close_button"
	IDLoading         = "loading"
)

// Style component names without a viewconfig constant.
const (
	CompBackgroundShade = "background_shade"
	CompTimerText       = "timer_text"
)

func FeatureID(i int) string { return fmt.Sprintf("feature_%d", i) }
func TimelineID(i int) string { return fmt.Sprintf("timeline_%d", i) }
func FooterID(name string) string {
	return "footer_" + name
}

func ProductID(i int) string { return fmt.Sprintf("product_%d", i) }
func ProductPartID(i int, part string) string {
	return fmt.Sprintf("product_%d_%s", i, part)
}

// Product cell parts.
const (
	PartTitle          = "title"
	PartSubtitle       = "subtitle"
	PartSecondTitle    = "second_title"
	PartSecondSubtitle = "second_subtitle"
	PartTag            = "tag"
)

// Template metrics in device-independent pixels.
const (
	SideMargin        = 16.0
	ItemSpacing       = 12.0
	ProductSpacing    = 8.0
	PanelBottomMargin = 24.0
	PanelTopPadding   = 16.0
	CellPadding       = 12.0
	CellRowSpacing    = 4.0
	TagPaddingX       = 8.0
	TagPaddingY       = 2.0
	TagInset          = 12.0
	ButtonPaddingX    = 16.0
	ButtonPaddingY    = 16.0
	FooterPaddingY    = 8.0
	CloseMargin       = 12.0
	CloseGlyphSize    = 20.0
	CloseGlyphColor   = 0xFF000000
	TimelineIconSize  = 28.0
	TimelineConnector = 2.0
	LoadingShade      = 0x80000000
)
