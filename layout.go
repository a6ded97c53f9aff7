package vkcore

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// BarrierMasks are the access masks and pipeline stages of one layout transition.
type BarrierMasks struct {
	SrcAccess vk.AccessFlags
	DstAccess vk.AccessFlags
	SrcStage  vk.PipelineStageFlags
	DstStage  vk.PipelineStageFlags
}

// LayoutBarrier resolves an edge of the image layout state machine. Only the
// upload edges (undefined -> transfer dst -> shader read) and the readback
// edges (shader read <-> transfer src) exist, every other pair is rejected.
func LayoutBarrier(oldLayout, newLayout vk.ImageLayout) (BarrierMasks, error) {
	switch {
	case oldLayout == vk.ImageLayoutUndefined && newLayout == vk.ImageLayoutTransferDstOptimal:
		return BarrierMasks{
			SrcAccess: 0,
			DstAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTopOfPipeBit | vk.PipelineStageHostBit),
			DstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, nil

	case oldLayout == vk.ImageLayoutTransferDstOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		return BarrierMasks{
			SrcAccess: vk.AccessFlags(vk.AccessTransferWriteBit),
			DstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			DstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, nil

	case oldLayout == vk.ImageLayoutShaderReadOnlyOptimal && newLayout == vk.ImageLayoutTransferSrcOptimal:
		return BarrierMasks{
			SrcAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			DstAccess: vk.AccessFlags(vk.AccessTransferReadBit),
			SrcStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
			DstStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		}, nil

	case oldLayout == vk.ImageLayoutTransferSrcOptimal && newLayout == vk.ImageLayoutShaderReadOnlyOptimal:
		return BarrierMasks{
			SrcAccess: vk.AccessFlags(vk.AccessTransferReadBit),
			DstAccess: vk.AccessFlags(vk.AccessShaderReadBit),
			SrcStage:  vk.PipelineStageFlags(vk.PipelineStageTransferBit),
			DstStage:  vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit),
		}, nil
	}
	return BarrierMasks{}, errors.Wrapf(ErrUnsupportedTransition, "%s -> %s",
		layoutName(oldLayout), layoutName(newLayout))
}

func layoutName(layout vk.ImageLayout) string {
	switch layout {
	case vk.ImageLayoutUndefined:
		return "undefined"
	case vk.ImageLayoutGeneral:
		return "general"
	case vk.ImageLayoutColorAttachmentOptimal:
		return "color attachment"
	case vk.ImageLayoutDepthStencilAttachmentOptimal:
		return "depth stencil attachment"
	case vk.ImageLayoutShaderReadOnlyOptimal:
		return "shader read only"
	case vk.ImageLayoutTransferSrcOptimal:
		return "transfer src"
	case vk.ImageLayoutTransferDstOptimal:
		return "transfer dst"
	case vk.ImageLayoutPresentSrc:
		return "present src"
	}
	return fmt.Sprintf("layout(%d)", int(layout))
}
