package models

type Chart struct {
	// key is the identifier of the panel, it is also used to build element ids in the dashboard.
	key string
	// title is shown above the chart on the card.
	title string
	// colour of the bars, specified as 3 byte hex with the # prefix.
	colour string
	// layoutPriority determines what order in the ui this chart should be shown
	layoutPriority uint8
}

func NewChart(
	key string,
	title string,
	colour string,
	layoutPriority uint8,
) *Chart {
	return &Chart{
		key,
		title,
		colour,
		layoutPriority,
	}
}

func (c *Chart) Key() string {
	return c.key
}

func (c *Chart) Title() string {
	return c.title
}

func (c *Chart) Colour() string {
	return c.colour
}

func (c *Chart) LayoutPriority() uint8 {
	return c.layoutPriority
}
