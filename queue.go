package vkcore

import (
	vk "github.com/vulkan-go/vulkan"
)

//QueueFamilyIndices holds the queue family chosen for each role, -1 while unset
type QueueFamilyIndices struct {
	Graphics int
	Present  int
}

func NewQueueFamilyIndices() QueueFamilyIndices {
	return QueueFamilyIndices{Graphics: -1, Present: -1}
}

func (q QueueFamilyIndices) IsComplete() bool {
	return q.Graphics >= 0 && q.Present >= 0
}

// Unique lists the distinct families, graphics first. One queue is created
// per entry.
func (q QueueFamilyIndices) Unique() []uint32 {
	var families []uint32
	if q.Graphics >= 0 {
		families = append(families, uint32(q.Graphics))
	}
	if q.Present >= 0 && q.Present != q.Graphics {
		families = append(families, uint32(q.Present))
	}
	return families
}

//Walks the queue families in index order. The first family able to present to the surface and,
//independently, the first family with the graphics bit win; the same family may serve both.
func findQueueFamilies(driver Driver, logs *Logs, gpu vk.PhysicalDevice, surface vk.Surface) QueueFamilyIndices {
	indices := NewQueueFamilyIndices()
	for i, flags := range driver.QueueFamilies(gpu) {
		if indices.Present < 0 {
			supported, err := driver.SurfaceSupport(gpu, uint32(i), surface)
			if err != nil {
				logs.Warn.Printf("surface support query for family %d: %v", i, err)
			} else if supported {
				indices.Present = i
			}
		}
		if indices.Graphics < 0 && flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			indices.Graphics = i
		}
		if indices.IsComplete() {
			break
		}
	}
	return indices
}
